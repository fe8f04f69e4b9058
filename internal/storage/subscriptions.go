package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// CreateSubscription вставляет подписку. Пара (user_id, collector_id) уникальна:
// повтор дает ErrConflict, несуществующий сборщик дает ErrNotFound.
func (s *Storage) CreateSubscription(ctx context.Context, userID, collectorID int64, status models.SubscriptionStatus) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	sub := &models.Subscription{UserID: userID, CollectorID: collectorID, Status: status}
	query := `INSERT INTO subscriptions (user_id, collector_id, statut)
			  VALUES ($1, $2, $3)
			  RETURNING id, date_subscription`
	if err := s.DB.QueryRowContext(ctx, query, userID, collectorID, status).
		Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return sub, nil
}

// UpdateSubscriptionStatus меняет статус подписки, если она принадлежит пользователю.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id, userID int64, status models.SubscriptionStatus) error {
	const op = "storage.UpdateSubscriptionStatus"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET statut = $1 WHERE id = $2 AND user_id = $3`,
		status, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// DeleteSubscription удаляет подписку пользователя.
func (s *Storage) DeleteSubscription(ctx context.Context, id, userID int64) error {
	const op = "storage.DeleteSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

const subscriptionViewQuery = `SELECT sub.id, sub.collector_id, sub.statut, sub.date_subscription,
			      c.nom, c.description, c.contact, c.email, c.telephone, c.adresse, c.zone_couverture
			  FROM subscriptions sub
			  JOIN collectors c ON c.id = sub.collector_id`

// ListSubscriptionsByUser возвращает подписки пользователя в любом статусе, новые первыми.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.SubscriptionView, error) {
	const op = "storage.ListSubscriptionsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		subscriptionViewQuery+` WHERE sub.user_id = $1 ORDER BY sub.date_subscription DESC, sub.id DESC`, userID)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	subs := []models.SubscriptionView{}
	for rows.Next() {
		var v models.SubscriptionView
		if err := rows.Scan(&v.ID, &v.CollectorID, &v.Status, &v.CreatedAt,
			&v.CollectorName, &v.CollectorDescription, &v.CollectorContact, &v.CollectorEmail,
			&v.CollectorPhone, &v.CollectorAddress, &v.CoverageZone); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// GetSubscription возвращает подписку пользователя по ID.
func (s *Storage) GetSubscription(ctx context.Context, id, userID int64) (*models.SubscriptionView, error) {
	const op = "storage.GetSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	v := &models.SubscriptionView{}
	if err := s.DB.QueryRowContext(ctx,
		subscriptionViewQuery+` WHERE sub.id = $1 AND sub.user_id = $2`, id, userID).
		Scan(&v.ID, &v.CollectorID, &v.Status, &v.CreatedAt,
			&v.CollectorName, &v.CollectorDescription, &v.CollectorContact, &v.CollectorEmail,
			&v.CollectorPhone, &v.CollectorAddress, &v.CoverageZone); err != nil {
		return nil, mapError(op, err)
	}
	return v, nil
}

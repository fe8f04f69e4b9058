package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// ListNotifications возвращает страницу уведомлений пользователя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	const op = "storage.ListNotifications"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, titre, message, type, lu, created_at
			  FROM notifications
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// CountNotifications возвращает общее и непрочитанное число уведомлений пользователя.
func (s *Storage) CountNotifications(ctx context.Context, userID int64) (total, unread int, err error) {
	const op = "storage.CountNotifications"
	if err = ctxDone(ctx, op); err != nil {
		return 0, 0, err
	}

	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT lu)
			  FROM notifications
			  WHERE user_id = $1`
	if err = s.DB.QueryRowContext(ctx, query, userID).Scan(&total, &unread); err != nil {
		return 0, 0, mapError(op, err)
	}
	return total, unread, nil
}

// MarkNotificationRead помечает уведомление пользователя прочитанным.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	const op = "storage.MarkNotificationRead"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET lu = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// MarkAllNotificationsRead помечает прочитанными все уведомления пользователя.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	const op = "storage.MarkAllNotificationsRead"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET lu = TRUE, updated_at = NOW() WHERE user_id = $1 AND NOT lu`, userID)
	if err != nil {
		return 0, mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// DeleteNotification удаляет уведомление пользователя.
func (s *Storage) DeleteNotification(ctx context.Context, id, userID int64) error {
	const op = "storage.DeleteNotification"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// CreateNotifications сохраняет одно и то же уведомление для каждого адресата в одной транзакции.
func (s *Storage) CreateNotifications(ctx context.Context, userIDs []int64, title, message string,
	kind models.NotificationType) ([]models.Notification, error) {
	const op = "storage.CreateNotifications"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notifications (user_id, titre, message, type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	created := make([]models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		n := models.Notification{UserID: userID, Title: title, Message: message, Type: kind}
		if err := stmt.QueryRowContext(ctx, userID, title, message, kind).Scan(&n.ID, &n.CreatedAt); err != nil {
			return nil, mapError(op, err)
		}
		created = append(created, n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

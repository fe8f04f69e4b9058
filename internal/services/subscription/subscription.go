// Package services содержит бизнес-логику подписок пользователей на сборщиков.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ecolight/internal/cache"
	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

var (
	ErrCollectorNotFound     = apperr.New(apperr.KindNotFound, "Collecteur non trouvé")
	ErrDuplicateSubscription = apperr.New(apperr.KindConflict, "Vous êtes déjà abonné à ce collecteur")
	ErrInvalidStatus         = apperr.New(apperr.KindValidation, "Statut invalide. Valeurs acceptées: actif, inactif, suspendu")
	ErrNotFound              = apperr.New(apperr.KindNotFound, "Abonnement non trouvé")
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
// Методы изменения и чтения ограничены владельцем: чужая подписка неотличима от отсутствующей.
type SubscriptionRepository interface {
	GetCollector(ctx context.Context, id int64) (*models.Collector, error)
	CreateSubscription(ctx context.Context, userID, collectorID int64, status models.SubscriptionStatus) (*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id, userID int64, status models.SubscriptionStatus) error
	DeleteSubscription(ctx context.Context, id, userID int64) error
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.SubscriptionView, error)
	GetSubscription(ctx context.Context, id, userID int64) (*models.SubscriptionView, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Notifier доставляет уведомление пользователю.
type Notifier interface {
	Send(ctx context.Context, userID int64, title, message string, kind models.NotificationType) (*models.Notification, error)
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    Cache
	notifier Notifier
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, notifier Notifier,
	cacheTTL time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Create подписывает пользователя на сборщика со статусом actif.
// Повторная подписка на того же сборщика отклоняется независимо от статуса существующей.
func (s *SubscriptionService) Create(ctx context.Context, userID, collectorID int64) (*models.Subscription, error) {
	const op = "services.SubscriptionService.Create"

	collector, err := s.repo.GetCollector(ctx, collectorID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCollectorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.repo.CreateSubscription(ctx, userID, collectorID, models.StatusActive)
	switch {
	case errors.Is(err, storage.ErrConflict):
		return nil, ErrDuplicateSubscription
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrCollectorNotFound
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	s.log.Info("subscription created",
		slog.Int64("id", sub.ID), slog.Int64("user_id", userID), slog.Int64("collector_id", collectorID))

	if s.notifier != nil {
		msg := fmt.Sprintf("Votre abonnement à %s est actif.", collector.Name)
		if _, err := s.notifier.Send(ctx, userID, "Abonnement confirmé", msg, models.NotificationSuccess); err != nil {
			s.log.Warn("failed to notify subscriber", slog.Int64("user_id", userID), sl.Err(err))
		}
	}
	return sub, nil
}

// UpdateStatus меняет статус подписки пользователя.
func (s *SubscriptionService) UpdateStatus(ctx context.Context, id, userID int64, status string) error {
	const op = "services.SubscriptionService.UpdateStatus"

	st, err := models.ParseSubscriptionStatus(status)
	if err != nil {
		return ErrInvalidStatus
	}

	err = s.repo.UpdateSubscriptionStatus(ctx, id, userID, st)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// Delete удаляет подписку пользователя.
func (s *SubscriptionService) Delete(ctx context.Context, id, userID int64) error {
	const op = "services.SubscriptionService.Delete"

	err := s.repo.DeleteSubscription(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// ListForUser возвращает подписки пользователя во всех статусах, используя кеш.
func (s *SubscriptionService) ListForUser(ctx context.Context, userID int64) ([]models.SubscriptionView, error) {
	const op = "services.SubscriptionService.ListForUser"
	key := cache.SubscriptionsKey(userID)

	var cached []models.SubscriptionView
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, key, subs, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache subscriptions", slog.String("key", key), sl.Err(err))
	}
	return subs, nil
}

// Get возвращает подписку пользователя по ID.
func (s *SubscriptionService) Get(ctx context.Context, id, userID int64) (*models.SubscriptionView, error) {
	const op = "services.SubscriptionService.Get"

	sub, err := s.repo.GetSubscription(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID int64) {
	key := cache.SubscriptionsKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}

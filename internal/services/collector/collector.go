// Package services содержит чтение справочника сборщиков с кешированием в redis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/ecolight/internal/cache"
	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

var (
	ErrCollectorNotFound = apperr.New(apperr.KindNotFound, "Collecteur non trouvé")
	ErrZoneRequired      = apperr.New(apperr.KindValidation, "Zone requise")
)

type CollectorRepository interface {
	ListCollectors(ctx context.Context) ([]models.Collector, error)
	GetCollector(ctx context.Context, id int64) (*models.Collector, error)
	SearchCollectors(ctx context.Context, zone string) ([]models.Collector, error)
}

type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Recorder учитывает попадания и промахи кеша.
type Recorder interface {
	CacheHit(keyType string)
	CacheMiss(keyType string)
}

type CollectorService struct {
	repo     CollectorRepository
	cache    Cache
	recorder Recorder
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewCollectorService(repo CollectorRepository, cache Cache, recorder Recorder,
	cacheTTL time.Duration, log *slog.Logger) *CollectorService {
	return &CollectorService{
		repo:     repo,
		cache:    cache,
		recorder: recorder,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// List возвращает всех сборщиков.
func (s *CollectorService) List(ctx context.Context) ([]models.Collector, error) {
	const op = "services.CollectorService.List"

	var collectors []models.Collector
	if s.fromCache(ctx, cache.CollectorsKey(), "collectors", &collectors) {
		return collectors, nil
	}

	collectors, err := s.repo.ListCollectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, cache.CollectorsKey(), collectors)
	return collectors, nil
}

// Get возвращает сборщика по ID.
func (s *CollectorService) Get(ctx context.Context, id int64) (*models.Collector, error) {
	const op = "services.CollectorService.Get"

	var collector models.Collector
	if s.fromCache(ctx, cache.CollectorKey(id), "collector", &collector) {
		return &collector, nil
	}

	found, err := s.repo.GetCollector(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCollectorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, cache.CollectorKey(id), found)
	return found, nil
}

// SearchByZone ищет сборщиков по вхождению zone в зону покрытия.
func (s *CollectorService) SearchByZone(ctx context.Context, zone string) ([]models.Collector, error) {
	const op = "services.CollectorService.SearchByZone"

	zone = strings.TrimSpace(zone)
	if zone == "" {
		return nil, ErrZoneRequired
	}
	collectors, err := s.repo.SearchCollectors(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectors, nil
}

func (s *CollectorService) fromCache(ctx context.Context, key, keyType string, dst any) bool {
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if s.recorder != nil {
		if found {
			s.recorder.CacheHit(keyType)
		} else {
			s.recorder.CacheMiss(keyType)
		}
	}
	return found
}

func (s *CollectorService) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache value", slog.String("key", key), sl.Err(err))
	}
}

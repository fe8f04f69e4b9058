// Package services содержит чтение расписаний вывоза.
package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

type ScheduleRepository interface {
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	ListSchedulesForUser(ctx context.Context, userID int64) ([]models.Schedule, error)
	ListSchedulesByCollector(ctx context.Context, collectorID int64) ([]models.Schedule, error)
}

type ScheduleService struct {
	repo ScheduleRepository
}

func NewScheduleService(repo ScheduleRepository) *ScheduleService {
	return &ScheduleService{repo: repo}
}

// ListAll возвращает все расписания с понедельника по воскресенье.
func (s *ScheduleService) ListAll(ctx context.Context) ([]models.Schedule, error) {
	const op = "services.ScheduleService.ListAll"
	list, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// ListForUser возвращает расписания сборщиков с активной подпиской пользователя.
func (s *ScheduleService) ListForUser(ctx context.Context, userID int64) ([]models.Schedule, error) {
	const op = "services.ScheduleService.ListForUser"
	list, err := s.repo.ListSchedulesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *ScheduleService) ListForCollector(ctx context.Context, collectorID int64) ([]models.Schedule, error) {
	const op = "services.ScheduleService.ListForCollector"
	list, err := s.repo.ListSchedulesByCollector(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

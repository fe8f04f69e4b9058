// Package services содержит бизнес-логику обращений граждан о проблемах с отходами.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

var (
	ErrReportNotFound = apperr.New(apperr.KindNotFound, "Signalement non trouvé")
	ErrInvalidReport  = apperr.New(apperr.KindValidation, "La localisation et la description sont requises")
)

type ReportRepository interface {
	CreateReport(ctx context.Context, r models.Report) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.Report, error)
	ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error)
	GetReport(ctx context.Context, id int64) (*models.Report, error)
	DeleteReport(ctx context.Context, id, userID int64) (*string, error)
}

// ImageStore хранит изображения обращений.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

type ReportService struct {
	repo   ReportRepository
	images ImageStore
	log    *slog.Logger
}

func NewReportService(repo ReportRepository, images ImageStore, log *slog.Logger) *ReportService {
	return &ReportService{repo: repo, images: images, log: log}
}

// Create сохраняет обращение и, если передано, его изображение.
// При ошибке записи в базу сохраненный файл удаляется.
func (s *ReportService) Create(ctx context.Context, userID int64, in models.NewReport, image io.Reader) (*models.Report, error) {
	const op = "services.ReportService.Create"

	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if in.Location == "" || in.Description == "" {
		return nil, ErrInvalidReport
	}

	report := models.Report{
		UserID:      userID,
		Location:    in.Location,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}

	if image != nil {
		url, err := s.images.Save(ctx, image)
		if err != nil {
			if apperr.KindOf(err) != apperr.KindInternal {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		report.ImageURL = &url
	}

	created, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		if report.ImageURL != nil {
			s.removeImage(ctx, *report.ImageURL)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("report created", slog.Int64("id", created.ID), slog.Int64("user_id", userID))
	return created, nil
}

// ListAll возвращает все обращения. Доступ ограничивается на уровне маршрута.
func (s *ReportService) ListAll(ctx context.Context) ([]models.Report, error) {
	const op = "services.ReportService.ListAll"
	list, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *ReportService) ListForUser(ctx context.Context, userID int64) ([]models.Report, error) {
	const op = "services.ReportService.ListForUser"
	list, err := s.repo.ListReportsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает обращение владельцу или администратору; остальным оно не видно.
func (s *ReportService) Get(ctx context.Context, id int64, who models.Identity) (*models.Report, error) {
	const op = "services.ReportService.Get"

	report, err := s.repo.GetReport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if report.UserID != who.ID && who.Role != models.RoleAdmin {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// Delete удаляет обращение владельца вместе с изображением.
func (s *ReportService) Delete(ctx context.Context, id, userID int64) error {
	const op = "services.ReportService.Delete"

	image, err := s.repo.DeleteReport(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if image != nil {
		s.removeImage(ctx, *image)
	}
	return nil
}

// removeImage удаляет файл даже после отмены запроса: строка уже удалена или не создана.
func (s *ReportService) removeImage(ctx context.Context, url string) {
	if err := s.images.Remove(context.WithoutCancel(ctx), url); err != nil {
		s.log.Warn("failed to remove report image", slog.String("url", url), sl.Err(err))
	}
}

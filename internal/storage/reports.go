package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

const reportQuery = `SELECT r.id, r.user_id, r.localisation, r.description, r.latitude, r.longitude,
			      r.image_url, r.statut, r.date_report, u.nom, u.email
			  FROM reports r
			  JOIN users u ON u.id = r.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r        models.Report
		lat, lng sql.NullFloat64
		image    sql.NullString
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Location, &r.Description, &lat, &lng,
		&image, &r.Status, &r.CreatedAt, &r.UserName, &r.UserEmail); err != nil {
		return nil, err
	}
	if lat.Valid {
		r.Latitude = &lat.Float64
	}
	if lng.Valid {
		r.Longitude = &lng.Float64
	}
	if image.Valid {
		r.ImageURL = &image.String
	}
	return &r, nil
}

func (s *Storage) listReports(ctx context.Context, op, query string, args ...any) ([]models.Report, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reports, nil
}

// CreateReport сохраняет обращение со статусом "nouveau".
func (s *Storage) CreateReport(ctx context.Context, r models.Report) (*models.Report, error) {
	const op = "storage.CreateReport"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO reports (user_id, localisation, description, latitude, longitude, image_url, statut)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, date_report`
	if err := s.DB.QueryRowContext(ctx, query,
		r.UserID, r.Location, r.Description, r.Latitude, r.Longitude, r.ImageURL, models.ReportNew).
		Scan(&r.ID, &r.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	r.Status = models.ReportNew
	return &r, nil
}

// ListReports возвращает все обращения, новые первыми.
func (s *Storage) ListReports(ctx context.Context) ([]models.Report, error) {
	const op = "storage.ListReports"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	return s.listReports(ctx, op, reportQuery+` ORDER BY r.date_report DESC, r.id DESC`)
}

// ListReportsByUser возвращает обращения одного пользователя.
func (s *Storage) ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error) {
	const op = "storage.ListReportsByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}
	return s.listReports(ctx, op,
		reportQuery+` WHERE r.user_id = $1 ORDER BY r.date_report DESC, r.id DESC`, userID)
}

// GetReport возвращает обращение по ID без проверки владельца.
func (s *Storage) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	const op = "storage.GetReport"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanReport(s.DB.QueryRowContext(ctx, reportQuery+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return r, nil
}

// DeleteReport удаляет обращение пользователя и возвращает путь к его изображению, если оно было.
func (s *Storage) DeleteReport(ctx context.Context, id, userID int64) (*string, error) {
	const op = "storage.DeleteReport"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var image sql.NullString
	if err := s.DB.QueryRowContext(ctx,
		`DELETE FROM reports WHERE id = $1 AND user_id = $2 RETURNING image_url`, id, userID).
		Scan(&image); err != nil {
		return nil, mapError(op, err)
	}
	if !image.Valid {
		return nil, nil
	}
	return &image.String, nil
}

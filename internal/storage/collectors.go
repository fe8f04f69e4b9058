package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

const collectorColumns = `id, nom, description, contact, email, telephone, adresse, zone_couverture, date_creation`

func scanCollectors(op string, rows *sql.Rows) ([]models.Collector, error) {
	defer rows.Close()

	collectors := []models.Collector{}
	for rows.Next() {
		var c models.Collector
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Contact, &c.Email,
			&c.Phone, &c.Address, &c.CoverageZone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		collectors = append(collectors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectors, nil
}

// ListCollectors возвращает всех сборщиков по алфавиту.
func (s *Storage) ListCollectors(ctx context.Context) ([]models.Collector, error) {
	const op = "storage.ListCollectors"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+collectorColumns+` FROM collectors ORDER BY nom`)
	if err != nil {
		return nil, mapError(op, err)
	}
	return scanCollectors(op, rows)
}

// GetCollector возвращает сборщика по ID.
func (s *Storage) GetCollector(ctx context.Context, id int64) (*models.Collector, error) {
	const op = "storage.GetCollector"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	c := &models.Collector{}
	if err := s.DB.QueryRowContext(ctx, `SELECT `+collectorColumns+` FROM collectors WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Contact, &c.Email,
			&c.Phone, &c.Address, &c.CoverageZone, &c.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return c, nil
}

// SearchCollectors ищет сборщиков, в зоне покрытия которых встречается zone.
func (s *Storage) SearchCollectors(ctx context.Context, zone string) ([]models.Collector, error) {
	const op = "storage.SearchCollectors"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+collectorColumns+` FROM collectors WHERE zone_couverture ILIKE $1 ORDER BY nom`,
		"%"+zone+"%")
	if err != nil {
		return nil, mapError(op, err)
	}
	return scanCollectors(op, rows)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// Порядок дней недели задается массивом, а не алфавитом.
const weekdayOrder = `array_position(ARRAY['Lundi','Mardi','Mercredi','Jeudi','Vendredi','Samedi','Dimanche']::varchar[], sch.jour), sch.heure`

func scanSchedules(op string, rows *sql.Rows) ([]models.Schedule, error) {
	defer rows.Close()

	schedules := []models.Schedule{}
	for rows.Next() {
		var sc models.Schedule
		if err := rows.Scan(&sc.ID, &sc.Day, &sc.Hour, &sc.WasteType, &sc.Zone,
			&sc.CollectorName, &sc.CollectorPhone, &sc.Contact); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		schedules = append(schedules, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return schedules, nil
}

// ListSchedules возвращает все расписания с именем сборщика.
func (s *Storage) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	const op = "storage.ListSchedules"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT sch.id, sch.jour, sch.heure, sch.type_dechet, sch.zone, c.nom, c.telephone, c.contact
			  FROM schedules sch
			  JOIN collectors c ON c.id = sch.collector_id
			  ORDER BY ` + weekdayOrder
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(op, err)
	}
	return scanSchedules(op, rows)
}

// ListSchedulesForUser возвращает расписания сборщиков, на которых у пользователя активная подписка.
func (s *Storage) ListSchedulesForUser(ctx context.Context, userID int64) ([]models.Schedule, error) {
	const op = "storage.ListSchedulesForUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT sch.id, sch.jour, sch.heure, sch.type_dechet, sch.zone, c.nom, c.telephone, c.contact
			  FROM subscriptions sub
			  JOIN collectors c ON c.id = sub.collector_id
			  JOIN schedules sch ON sch.collector_id = c.id
			  WHERE sub.user_id = $1 AND sub.statut = $2
			  ORDER BY ` + weekdayOrder
	rows, err := s.DB.QueryContext(ctx, query, userID, models.StatusActive)
	if err != nil {
		return nil, mapError(op, err)
	}
	return scanSchedules(op, rows)
}

// ListSchedulesByCollector возвращает расписание одного сборщика.
func (s *Storage) ListSchedulesByCollector(ctx context.Context, collectorID int64) ([]models.Schedule, error) {
	const op = "storage.ListSchedulesByCollector"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT sch.id, sch.jour, sch.heure, sch.type_dechet, sch.zone, c.nom, c.telephone, c.contact
			  FROM schedules sch
			  JOIN collectors c ON c.id = sch.collector_id
			  WHERE sch.collector_id = $1
			  ORDER BY ` + weekdayOrder
	rows, err := s.DB.QueryContext(ctx, query, collectorID)
	if err != nil {
		return nil, mapError(op, err)
	}
	return scanSchedules(op, rows)
}

// ListRemindersForDay возвращает вывозы дня day для всех активных подписчиков соответствующих сборщиков.
func (s *Storage) ListRemindersForDay(ctx context.Context, day string) ([]models.Reminder, error) {
	const op = "storage.ListRemindersForDay"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.email, u.nom, c.nom, sch.jour, sch.heure, sch.type_dechet, sch.zone
			  FROM schedules sch
			  JOIN collectors c ON c.id = sch.collector_id
			  JOIN subscriptions sub ON sub.collector_id = sch.collector_id AND sub.statut = $2
			  JOIN users u ON u.id = sub.user_id
			  WHERE sch.jour = $1
			  ORDER BY sch.heure, c.nom, u.id`
	rows, err := s.DB.QueryContext(ctx, query, day, models.StatusActive)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var r models.Reminder
		if err := rows.Scan(&r.ID, &r.Email, &r.Name, &r.CollectorName, &r.Day, &r.Hour,
			&r.WasteType, &r.Zone); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reminders, nil
}

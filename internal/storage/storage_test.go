package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewWithDB(db), mock
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, want: ErrConflict},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	other := errors.New("db down")
	got := mapError("op", other)
	assert.ErrorIs(t, got, other)
	assert.False(t, errors.Is(got, ErrNotFound))
	assert.False(t, errors.Is(got, ErrConflict))
}

func TestStorage_CancelledContext(t *testing.T) {
	s, _ := newMockStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetUser(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	err = s.DeleteSubscription(ctx, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_CreateUser(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Awa", "awa@example.com", "hash", "citoyen").
			WillReturnRows(sqlmock.NewRows([]string{"id", "date_creation"}).AddRow(int64(7), now))

		u, err := s.CreateUser(context.Background(), models.User{
			Name: "Awa", Email: "awa@example.com", PasswordHash: "hash", Role: models.RoleCitizen,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), u.ID)
		assert.Equal(t, now, u.CreatedAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := s.CreateUser(context.Background(), models.User{Email: "awa@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestStorage_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT id, nom, email, mot_de_passe, role, date_creation\s+FROM users\s+WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_UpdateUserName(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`UPDATE users SET nom`).WithArgs("Nouveau", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET nom`).WithArgs("Nouveau", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateUserName(context.Background(), 3, "Nouveau"))
	assert.ErrorIs(t, s.UpdateUserName(context.Background(), 4, "Nouveau"), ErrNotFound)
}

func TestStorage_ListUsers(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE \(nom ILIKE \$1 OR email ILIKE \$1\) AND role = \$2`).
		WithArgs("%awa%", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs("%awa%", "admin", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nom", "email", "role", "date_creation"}).
			AddRow(int64(1), "Awa", "awa@example.com", "admin", now))

	users, total, err := s.ListUsers(context.Background(), models.UserFilter{
		Search: "awa", Role: models.RoleAdmin, Limit: 10, Offset: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
}

func TestStorage_ListRecipients(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT id, email, nom FROM users WHERE role = \$1 ORDER BY id`).
		WithArgs("collecteur").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "nom"}).
			AddRow(int64(1), "a@example.com", "A").
			AddRow(int64(2), "b@example.com", "B"))

	got, err := s.ListRecipients(context.Background(), models.RoleCollector)
	require.NoError(t, err)
	assert.Equal(t, []models.Recipient{
		{ID: 1, Email: "a@example.com", Name: "A"},
		{ID: 2, Email: "b@example.com", Name: "B"},
	}, got)
}

func TestStorage_SearchCollectors(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectQuery(`WHERE zone_couverture ILIKE \$1`).
		WithArgs("%Cocody%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nom", "description", "contact", "email",
			"telephone", "adresse", "zone_couverture", "date_creation"}).
			AddRow(int64(2), "Vert Cocody", "", "", "", "", "", "Cocody, Riviera", now))

	got, err := s.SearchCollectors(context.Background(), "Cocody")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Cocody", "Riviera"}, got[0].Zones())
}

func TestStorage_ListSchedulesForUser(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`WHERE sub.user_id = \$1 AND sub.statut = \$2\s+ORDER BY array_position`).
		WithArgs(int64(5), "actif").
		WillReturnRows(sqlmock.NewRows([]string{"id", "jour", "heure", "type_dechet", "zone", "nom", "telephone", "contact"}).
			AddRow(int64(1), "Lundi", "07:00", "Plastique", "Plateau", "EcoCollect", "+225", "Awa"))

	got, err := s.ListSchedulesForUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lundi", got[0].Day)
}

func TestStorage_ListRemindersForDay(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`JOIN users u ON u.id = sub.user_id\s+WHERE sch.jour = \$1`).
		WithArgs("Mardi", "actif").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "nom", "nom", "jour", "heure", "type_dechet", "zone"}).
			AddRow(int64(5), "awa@example.com", "Awa", "EcoCollect", "Mardi", "07:00", "Plastique", "Plateau").
			AddRow(int64(6), "koffi@example.com", "Koffi", "EcoCollect", "Mardi", "07:00", "Plastique", "Plateau"))

	got, err := s.ListRemindersForDay(context.Background(), "Mardi")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "koffi@example.com", got[1].Email)
	assert.Equal(t, "EcoCollect", got[0].CollectorName)
}

func TestStorage_CreateSubscription(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`INSERT INTO subscriptions`).
			WithArgs(int64(1), int64(42), "actif").
			WillReturnRows(sqlmock.NewRows([]string{"id", "date_subscription"}).AddRow(int64(9), now))

		sub, err := s.CreateSubscription(context.Background(), 1, 42, models.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, int64(9), sub.ID)
		assert.Equal(t, models.StatusActive, sub.Status)
	})

	t.Run("duplicate pair", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`INSERT INTO subscriptions`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "subscriptions_user_collector_key"})

		_, err := s.CreateSubscription(context.Background(), 1, 42, models.StatusActive)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown collector", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`INSERT INTO subscriptions`).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, err := s.CreateSubscription(context.Background(), 1, 999, models.StatusActive)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_UpdateSubscriptionStatus_OwnershipScoped(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`UPDATE subscriptions SET statut = \$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs("suspendu", int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateSubscriptionStatus(context.Background(), 9, 2, models.StatusSuspended)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_DeleteReport(t *testing.T) {
	t.Run("with image", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`DELETE FROM reports WHERE id = \$1 AND user_id = \$2 RETURNING image_url`).
			WithArgs(int64(3), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow("/uploads/reports/a.png"))

		img, err := s.DeleteReport(context.Background(), 3, 1)
		require.NoError(t, err)
		require.NotNil(t, img)
		assert.Equal(t, "/uploads/reports/a.png", *img)
	})

	t.Run("not owned", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(`DELETE FROM reports`).WillReturnError(sql.ErrNoRows)

		_, err := s.DeleteReport(context.Background(), 3, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_GetReport_NullableColumns(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectQuery(`WHERE r.id = \$1`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "localisation", "description", "latitude",
			"longitude", "image_url", "statut", "date_report", "nom", "email"}).
			AddRow(int64(4), int64(1), "Marché", "Dépôt sauvage", 5.35, nil, nil, "nouveau", now, "Awa", "awa@example.com"))

	r, err := s.GetReport(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, r.Latitude)
	assert.InDelta(t, 5.35, *r.Latitude, 1e-9)
	assert.Nil(t, r.Longitude)
	assert.Nil(t, r.ImageURL)
	assert.Equal(t, models.ReportNew, r.Status)
}

func TestStorage_CountNotifications(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "unread"}).AddRow(5, 2))

	total, unread, err := s.CountNotifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, unread)
}

func TestStorage_CreateNotifications(t *testing.T) {
	now := time.Now()

	t.Run("commits all rows", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectBegin()
		prep := mock.ExpectPrepare(`INSERT INTO notifications`)
		prep.ExpectQuery().WithArgs(int64(1), "Titre", "Msg", "info").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))
		prep.ExpectQuery().WithArgs(int64(2), "Titre", "Msg", "info").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))
		mock.ExpectCommit()

		got, err := s.CreateNotifications(context.Background(), []int64{1, 2}, "Titre", "Msg", models.NotificationInfo)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(11), got[1].ID)
		assert.Equal(t, int64(2), got[1].UserID)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectBegin()
		prep := mock.ExpectPrepare(`INSERT INTO notifications`)
		prep.ExpectQuery().WithArgs(int64(1), "Titre", "Msg", "info").
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()

		_, err := s.CreateNotifications(context.Background(), []int64{1}, "Titre", "Msg", models.NotificationInfo)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_MarkAllNotificationsRead(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`UPDATE notifications SET lu = TRUE`).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.MarkAllNotificationsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

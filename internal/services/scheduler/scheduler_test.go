package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListRemindersForDay(ctx context.Context, day string) ([]models.Reminder, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reminder), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipients []models.Recipient, title, message string,
	kind models.NotificationType) (int, error) {
	args := m.Called(ctx, recipients, title, message, kind)
	return args.Int(0), args.Error(1)
}

func newService(repo *MockRepository, notifier *MockNotifier) *SchedulerService {
	s := NewSchedulerService(repo, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Понедельник: напоминаем о вторнике.
	s.now = func() time.Time { return time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) }
	return s
}

func reminder(id int64, hour string) models.Reminder {
	return models.Reminder{
		Recipient:     models.Recipient{ID: id, Email: "u@example.com", Name: "U"},
		CollectorName: "EcoCollect",
		Day:           "Mardi",
		Hour:          hour,
		WasteType:     "Plastique",
		Zone:          "Plateau",
	}
}

func TestRemindTomorrow_GroupsBySlot(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	repo.On("ListRemindersForDay", mock.Anything, "Mardi").Return([]models.Reminder{
		reminder(1, "07:00"), reminder(2, "07:00"), reminder(1, "15:00"),
	}, nil).Once()

	morning := "Collecte prévue demain (Mardi) à 07:00 par EcoCollect: Plastique, zone Plateau"
	evening := "Collecte prévue demain (Mardi) à 15:00 par EcoCollect: Plastique, zone Plateau"
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(r []models.Recipient) bool { return len(r) == 2 }),
		ReminderTitle, morning, models.NotificationInfo).Return(2, nil).Once()
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(r []models.Recipient) bool { return len(r) == 1 }),
		ReminderTitle, evening, models.NotificationInfo).Return(1, nil).Once()

	n, err := newService(repo, notifier).RemindTomorrow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRemindTomorrow_NothingScheduled(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	repo.On("ListRemindersForDay", mock.Anything, "Mardi").Return([]models.Reminder{}, nil).Once()

	n, err := newService(repo, notifier).RemindTomorrow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	notifier.AssertNotCalled(t, "Notify")
}

func TestRemindTomorrow_Errors(t *testing.T) {
	t.Run("ошибка хранилища", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListRemindersForDay", mock.Anything, "Mardi").Return(nil, errors.New("db down")).Once()

		_, err := newService(repo, new(MockNotifier)).RemindTomorrow(context.Background())
		assert.Error(t, err)
	})

	t.Run("сбой одного слота не останавливает остальные", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := new(MockNotifier)
		repo.On("ListRemindersForDay", mock.Anything, "Mardi").Return([]models.Reminder{
			reminder(1, "07:00"), reminder(2, "15:00"),
		}, nil).Once()
		notifier.On("Notify", mock.Anything, mock.Anything, ReminderTitle, mock.MatchedBy(func(m string) bool {
			return strings.Contains(m, "07:00")
		}), models.NotificationInfo).Return(0, errors.New("tx failed")).Once()
		notifier.On("Notify", mock.Anything, mock.Anything, ReminderTitle, mock.Anything, models.NotificationInfo).
			Return(1, nil).Once()

		n, err := newService(repo, notifier).RemindTomorrow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newService(new(MockRepository), new(MockNotifier)).Run(ctx, "")
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	err := newService(new(MockRepository), new(MockNotifier)).Run(context.Background(), "every tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestReminderMessage(t *testing.T) {
	r := models.Reminder{CollectorName: "Propre", Day: "Jeudi", Hour: "09:30"}
	assert.Equal(t, "Collecte prévue demain (Jeudi) à 09:30 par Propre", reminderMessage(r))
}

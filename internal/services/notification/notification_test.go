package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	items  []models.Notification
	fail   error
}

func newMemoryRepo(users ...models.User) *memoryRepo {
	r := &memoryRepo{users: map[int64]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryRepo) ListNotifications(_ context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var own []models.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			own = append(own, r.items[i])
		}
	}
	if offset >= len(own) {
		return nil, nil
	}
	end := min(offset+limit, len(own))
	return own[offset:end], nil
}

func (r *memoryRepo) CountNotifications(_ context.Context, userID int64) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, unread int
	for _, n := range r.items {
		if n.UserID == userID {
			total++
			if !n.Read {
				unread++
			}
		}
	}
	return total, unread, nil
}

func (r *memoryRepo) MarkNotificationRead(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (r *memoryRepo) MarkAllNotificationsRead(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) DeleteNotification(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (r *memoryRepo) CreateNotifications(_ context.Context, userIDs []int64, title, message string,
	kind models.NotificationType) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var created []models.Notification
	for _, id := range userIDs {
		r.nextID++
		n := models.Notification{ID: r.nextID, UserID: id, Title: title, Message: message, Type: kind}
		r.items = append(r.items, n)
		created = append(created, n)
	}
	return created, nil
}

func (r *memoryRepo) GetUser(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepo) ListRecipients(_ context.Context, role models.Role) ([]models.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Recipient
	for id := int64(1); id <= int64(len(r.users)); id++ {
		u, ok := r.users[id]
		if !ok || (role != "" && u.Role != role) {
			continue
		}
		out = append(out, models.Recipient{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return out, nil
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, message any) error {
	return m.Called(ctx, message).Error(0)
}

type recorderStub struct {
	ok, failed int
}

func (r *recorderStub) Published(err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func users() []models.User {
	return []models.User{
		{ID: 1, Name: "Awa", Email: "awa@example.com", Role: models.RoleCitizen},
		{ID: 2, Name: "Koffi", Email: "koffi@example.com", Role: models.RoleCollector},
		{ID: 3, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin},
	}
}

func TestNotificationService_Send(t *testing.T) {
	repo := newMemoryRepo(users()...)
	pub := new(PublisherMock)
	rec := &recorderStub{}
	pub.On("Publish", mock.Anything, models.NotificationMessage{
		UserID: 1, Email: "awa@example.com", Name: "Awa", Title: "Collecte", Message: "Demain 8h", Type: models.NotificationInfo,
	}).Return(nil).Once()

	svc := NewNotificationService(repo, pub, rec, newNoopLogger())
	n, err := svc.Send(context.Background(), 1, " Collecte ", "Demain 8h", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.UserID)
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.Equal(t, 1, rec.ok)
	pub.AssertExpectations(t)
}

func TestNotificationService_Send_Errors(t *testing.T) {
	svc := NewNotificationService(newMemoryRepo(users()...), nil, nil, newNoopLogger())
	ctx := context.Background()

	_, err := svc.Send(ctx, 99, "t", "m", models.NotificationInfo)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Send(ctx, 1, "", "m", models.NotificationInfo)
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = svc.Send(ctx, 1, "t", "m", "urgent")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestNotificationService_Send_PublishFailureKeepsInbox(t *testing.T) {
	repo := newMemoryRepo(users()...)
	pub := new(PublisherMock)
	rec := &recorderStub{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	svc := NewNotificationService(repo, pub, rec, newNoopLogger())
	_, err := svc.Send(context.Background(), 2, "t", "m", models.NotificationWarning)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.failed)

	inbox, err := svc.ListForUser(context.Background(), 2, 1, 0)
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 1)
}

func TestNotificationService_Broadcast(t *testing.T) {
	t.Run("all users", func(t *testing.T) {
		pub := new(PublisherMock)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Times(3)
		svc := NewNotificationService(newMemoryRepo(users()...), pub, nil, newNoopLogger())

		n, err := svc.Broadcast(context.Background(), "Maintenance", "Ce soir", models.NotificationWarning, "")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		pub.AssertExpectations(t)
	})

	t.Run("by role", func(t *testing.T) {
		repo := newMemoryRepo(users()...)
		svc := NewNotificationService(repo, nil, nil, newNoopLogger())

		n, err := svc.Broadcast(context.Background(), "Tournée", "Nouvel itinéraire", models.NotificationInfo, "collecteur")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		inbox, err := svc.ListForUser(context.Background(), 2, 1, 10)
		require.NoError(t, err)
		assert.Len(t, inbox.Items, 1)
	})

	t.Run("no recipients", func(t *testing.T) {
		svc := NewNotificationService(newMemoryRepo(), nil, nil, newNoopLogger())
		_, err := svc.Broadcast(context.Background(), "t", "m", models.NotificationInfo, "")
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("invalid role", func(t *testing.T) {
		svc := NewNotificationService(newMemoryRepo(users()...), nil, nil, newNoopLogger())
		_, err := svc.Broadcast(context.Background(), "t", "m", models.NotificationInfo, "superuser")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newMemoryRepo(users()...)
		repo.fail = errors.New("db down")
		svc := NewNotificationService(repo, nil, nil, newNoopLogger())
		_, err := svc.Broadcast(context.Background(), "t", "m", models.NotificationInfo, "")
		assert.Error(t, err)
	})
}

func TestNotificationService_Notify(t *testing.T) {
	repo := newMemoryRepo(users()...)
	pub := new(PublisherMock)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(m models.NotificationMessage) bool {
		return m.Title == "Rappel de collecte" && (m.UserID == 1 || m.UserID == 2)
	})).Return(nil).Twice()
	svc := NewNotificationService(repo, pub, nil, newNoopLogger())

	n, err := svc.Notify(context.Background(), []models.Recipient{
		{ID: 1, Email: "awa@example.com", Name: "Awa"},
		{ID: 2, Email: "koffi@example.com", Name: "Koffi"},
	}, "Rappel de collecte", "Collecte prévue Mardi à 07:00", models.NotificationInfo)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	pub.AssertExpectations(t)

	n, err = svc.Notify(context.Background(), nil, "Rappel de collecte", "x", models.NotificationInfo)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Notify(context.Background(), []models.Recipient{{ID: 1}}, " ", "x", models.NotificationInfo)
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestNotificationService_Inbox(t *testing.T) {
	repo := newMemoryRepo(users()...)
	svc := NewNotificationService(repo, nil, nil, newNoopLogger())
	ctx := context.Background()

	for range 3 {
		_, err := svc.Send(ctx, 1, "t", "m", models.NotificationInfo)
		require.NoError(t, err)
	}
	_, err := svc.Send(ctx, 2, "t", "m", models.NotificationInfo)
	require.NoError(t, err)

	inbox, err := svc.ListForUser(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 2)
	assert.Equal(t, 3, inbox.UnreadCount)
	assert.Equal(t, 2, inbox.Pagination.TotalPages)
	assert.True(t, inbox.Pagination.HasNext)
	assert.Equal(t, int64(3), inbox.Items[0].ID, "newest first")

	require.NoError(t, svc.MarkRead(ctx, 1, 1))
	assert.ErrorIs(t, svc.MarkRead(ctx, 4, 1), ErrNotificationNotFound, "someone else's notification")

	n, err := svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	inbox, err = svc.ListForUser(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, inbox.UnreadCount)
	assert.Equal(t, 1, inbox.Pagination.CurrentPage)

	require.NoError(t, svc.Delete(ctx, 2, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2, 1), ErrNotificationNotFound)

	empty, err := svc.ListForUser(ctx, 3, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

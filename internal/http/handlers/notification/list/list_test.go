package list

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/models"
	services "github.com/magabrotheeeer/ecolight/internal/services/notification"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListForUser(ctx context.Context, userID int64, page, limit int) (*services.Inbox, error) {
	args := m.Called(ctx, userID, page, limit)
	inbox, _ := args.Get(0).(*services.Inbox)
	return inbox, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	t.Run("страница с непрочитанными", func(t *testing.T) {
		m := new(MockService)
		m.On("ListForUser", mock.Anything, int64(9), 2, 5).Return(&services.Inbox{
			Items:       []models.Notification{{ID: 11, Title: "Collecte", Type: models.NotificationInfo}},
			UnreadCount: 3,
			Pagination:  models.NewPagination(2, 5, 6),
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/notifications/my-notifications?page=2&limit=5", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), models.Identity{ID: 9}))
		w := httptest.NewRecorder()

		New(logger, m).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success     bool                  `json:"success"`
			Data        []models.Notification `json:"data"`
			UnreadCount int                   `json:"unread_count"`
			Pagination  models.Pagination     `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Len(t, body.Data, 1)
		assert.Equal(t, 3, body.UnreadCount)
		assert.Equal(t, 2, body.Pagination.CurrentPage)
		m.AssertExpectations(t)
	})

	t.Run("мусор в параметрах", func(t *testing.T) {
		m := new(MockService)
		m.On("ListForUser", mock.Anything, int64(9), 0, 0).
			Return(&services.Inbox{Items: []models.Notification{}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/notifications/my-notifications?page=x&limit=y", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), models.Identity{ID: 9}))
		w := httptest.NewRecorder()

		New(logger, m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		m.AssertExpectations(t)
	})
}

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateUserName(ctx context.Context, id int64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *RepoMock) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *RepoMock) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

type HasherMock struct {
	mock.Mock
}

func (m *HasherMock) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *HasherMock) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateUserName", mock.Anything, int64(1), "Awa K.").Return(nil).Once()
	repo.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, Name: "Awa K."}, nil).Once()
	repo.On("UpdateUserName", mock.Anything, int64(2), "X").Return(storage.ErrNotFound).Once()

	svc := NewUserService(repo, new(HasherMock), newNoopLogger())

	u, err := svc.UpdateProfile(context.Background(), 1, "  Awa K. ")
	require.NoError(t, err)
	assert.Equal(t, "Awa K.", u.Name)

	_, err = svc.UpdateProfile(context.Background(), 2, "X")
	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.AssertExpectations(t)
}

func TestUserService_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(r *RepoMock, h *HasherMock)
		wantErr error
	}{
		{
			name: "success",
			setup: func(r *RepoMock, h *HasherMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, PasswordHash: "old-hash"}, nil)
				h.On("Compare", "old-hash", "old1").Return(nil)
				h.On("Hash", "new1").Return("new-hash", nil)
				r.On("UpdatePassword", mock.Anything, int64(1), "new-hash").Return(nil)
			},
		},
		{
			name: "wrong current password",
			setup: func(r *RepoMock, h *HasherMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, PasswordHash: "old-hash"}, nil)
				h.On("Compare", "old-hash", "old1").Return(errors.New("mismatch"))
			},
			wantErr: ErrWrongPassword,
		},
		{
			name: "user gone",
			setup: func(r *RepoMock, _ *HasherMock) {
				r.On("GetUser", mock.Anything, int64(1)).Return(nil, storage.ErrNotFound)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, hasher := new(RepoMock), new(HasherMock)
			tt.setup(repo, hasher)
			svc := NewUserService(repo, hasher, newNoopLogger())

			err := svc.ChangePassword(context.Background(), 1, "old1", "new1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}

func TestUserService_List(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything, models.UserFilter{Search: "awa", Role: models.RoleCitizen, Limit: 10, Offset: 10}).
		Return([]models.User{{ID: 11}}, 21, nil).Once()
	svc := NewUserService(repo, new(HasherMock), newNoopLogger())

	users, page, err := svc.List(context.Background(), ListQuery{Page: 2, Search: " awa ", Role: "citoyen"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 21, HasNext: true, HasPrev: true}, page)
	repo.AssertExpectations(t)
}

func TestUserService_List_Defaults(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything, models.UserFilter{Limit: MaxPageLimit, Offset: 0}).
		Return([]models.User{}, 0, nil).Once()
	svc := NewUserService(repo, new(HasherMock), newNoopLogger())

	_, page, err := svc.List(context.Background(), ListQuery{Page: -3, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)

	_, _, err = svc.List(context.Background(), ListQuery{Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)
	repo.AssertExpectations(t)
}

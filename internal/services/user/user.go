// Package services содержит операции над учетной записью: профиль, смена пароля и список пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var (
	ErrUserNotFound  = apperr.New(apperr.KindNotFound, "Utilisateur non trouvé")
	ErrWrongPassword = apperr.New(apperr.KindValidation, "Mot de passe actuel incorrect")
	ErrInvalidRole   = apperr.New(apperr.KindValidation, "Rôle invalide")
)

// UserRepository описывает хранилище учетных записей.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUserName(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// Hasher хеширует и проверяет пароли.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// ListQuery параметры постраничного списка пользователей.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

// UserService управляет учетными записями.
type UserService struct {
	repo   UserRepository
	hasher Hasher
	log    *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, hasher Hasher, log *slog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// Profile возвращает учетную запись.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "services.UserService.Profile"

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile меняет имя пользователя и возвращает обновленную запись.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name string) (*models.User, error) {
	const op = "services.UserService.UpdateProfile"

	err := s.repo.UpdateUserName(ctx, userID, strings.TrimSpace(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Profile(ctx, userID)
}

// ChangePassword меняет пароль после проверки текущего.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	const op = "services.UserService.ChangePassword"

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}

	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password changed", slog.Int64("user_id", userID))
	return nil
}

// List возвращает страницу пользователей и сведения о пагинации.
func (s *UserService) List(ctx context.Context, q ListQuery) ([]models.User, models.Pagination, error) {
	const op = "services.UserService.List"

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}

	filter := models.UserFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
	if q.Role != "" {
		role := models.Role(q.Role)
		if !role.Valid() {
			return nil, models.Pagination{}, ErrInvalidRole
		}
		filter.Role = role
	}

	users, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	return users, models.NewPagination(q.Page, q.Limit, total), nil
}

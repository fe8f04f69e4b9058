// Package services содержит логику регистрации, входа и получения профиля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

var (
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "Un utilisateur avec cet email existe déjà")
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "Email ou mot de passe incorrect")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "Utilisateur non trouvé")
	ErrInvalidRole        = apperr.New(apperr.KindValidation, "Rôle invalide")
)

// dummyPassword хешируется при создании сервиса; с этим хешем сравнивается
// пароль при неизвестном email, чтобы время ответа не выдавало наличие учетной записи.
const dummyPassword = "ecolight-dummy-password"

// UserRepository описывает хранилище учетных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Hasher хеширует и проверяет пароли.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer выпускает токены доступа.
type TokenIssuer interface {
	Issue(userID int64, email string, role models.Role) (string, error)
}

// Result токен и учетная запись, возвращаемые при регистрации и входе.
type Result struct {
	Token string
	User  *models.User
}

// AuthService отвечает за регистрацию, вход и профиль.
type AuthService struct {
	users  UserRepository
	hasher Hasher
	tokens TokenIssuer
	log    *slog.Logger
	// dummyHash создан тем же hasher, что и настоящие хеши, и имеет ту же стоимость.
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, hasher Hasher, tokens TokenIssuer, log *slog.Logger) *AuthService {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		log.Error("failed to prepare dummy password hash", sl.Err(err))
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		dummyHash: dummy,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает учетную запись. Пустая роль означает citoyen.
// Уникальность email обеспечивает ограничение в базе.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string, role models.Role) (*Result, error) {
	const op = "services.AuthService.Register"

	if role == "" {
		role = models.RoleCitizen
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hashed,
		Role:         role,
	})
	if errors.Is(err, storage.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", user.Role.String()))
	return &Result{Token: token, User: user}, nil
}

// Login проверяет пароль и выпускает токен. Неизвестный email и неверный
// пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "services.AuthService.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		_ = s.hasher.Compare(s.dummyHash, rawPassword)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Token: token, User: user}, nil
}

// Profile возвращает учетную запись по ID.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "services.AuthService.Profile"

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

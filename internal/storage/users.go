package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/ecolight/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его с присвоенным ID.
// Повторный email дает ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (nom, email, mot_de_passe, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, date_creation`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return &user, nil
}

// GetUserByEmail возвращает пользователя вместе с хешем пароля.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, nom, email, mot_de_passe, role, date_creation
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, nom, email, mot_de_passe, role, date_creation
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// UpdateUserName меняет отображаемое имя пользователя.
func (s *Storage) UpdateUserName(ctx context.Context, id int64, name string) error {
	const op = "storage.UpdateUserName"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET nom = $1 WHERE id = $2`, name, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// UpdatePassword сохраняет новый хеш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.UpdatePassword"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET mot_de_passe = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

func userFilterClause(filter models.UserFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(nom ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListUsers возвращает страницу пользователей и общее число подходящих под фильтр.
func (s *Storage) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	const op = "storage.ListUsers"
	if err := ctxDone(ctx, op); err != nil {
		return nil, 0, err
	}

	where, args := userFilterClause(filter)

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(op, err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT id, nom, email, role, date_creation
			  FROM users%s
			  ORDER BY date_creation DESC, id DESC
			  LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, filter.Limit)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// ListRecipients возвращает адресатов рассылки. Пустая роль означает всех пользователей.
func (s *Storage) ListRecipients(ctx context.Context, role models.Role) ([]models.Recipient, error) {
	const op = "storage.ListRecipients"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, email, nom FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.ID, &r.Email, &r.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return recipients, nil
}

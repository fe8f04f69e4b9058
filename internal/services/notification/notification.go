// Package services содержит бизнес-логику уведомлений: входящие пользователя,
// отправку администратором и публикацию в очередь для почтовой доставки.
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

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var (
	ErrNotificationNotFound = apperr.New(apperr.KindNotFound, "Notification non trouvée")
	ErrUserNotFound         = apperr.New(apperr.KindNotFound, "Utilisateur non trouvé")
	ErrNoRecipients         = apperr.New(apperr.KindNotFound, "Aucun destinataire trouvé")
	ErrInvalidNotification  = apperr.New(apperr.KindValidation, "Le titre et le message sont requis")
	ErrInvalidType          = apperr.New(apperr.KindValidation, "Type de notification invalide")
	ErrInvalidRole          = apperr.New(apperr.KindValidation, "Rôle invalide")
)

type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	CountNotifications(ctx context.Context, userID int64) (total, unread int, err error)
	MarkNotificationRead(ctx context.Context, id, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, id, userID int64) error
	CreateNotifications(ctx context.Context, userIDs []int64, title, message string, kind models.NotificationType) ([]models.Notification, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListRecipients(ctx context.Context, role models.Role) ([]models.Recipient, error)
}

// Publisher публикует сообщение для почтовой доставки.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// Recorder учитывает результат публикации.
type Recorder interface {
	Published(err error)
}

// Inbox страница входящих уведомлений пользователя.
type Inbox struct {
	Items       []models.Notification
	UnreadCount int
	Pagination  models.Pagination
}

type NotificationService struct {
	repo      NotificationRepository
	publisher Publisher
	recorder  Recorder
	log       *slog.Logger
}

// NewNotificationService создает сервис. publisher и recorder могут быть nil:
// тогда уведомления только сохраняются во входящих.
func NewNotificationService(repo NotificationRepository, publisher Publisher, recorder Recorder, log *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, recorder: recorder, log: log}
}

// ListForUser возвращает страницу уведомлений пользователя, новые первыми.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64, page, limit int) (*Inbox, error) {
	const op = "services.NotificationService.ListForUser"

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	items, err := s.repo.ListNotifications(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	total, unread, err := s.repo.CountNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []models.Notification{}
	}

	return &Inbox{
		Items:       items,
		UnreadCount: unread,
		Pagination:  models.NewPagination(page, limit, total),
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	const op = "services.NotificationService.MarkRead"
	err := s.repo.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkAllRead отмечает прочитанными все уведомления пользователя и возвращает их число.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	const op = "services.NotificationService.MarkAllRead"
	n, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID int64) error {
	const op = "services.NotificationService.Delete"
	err := s.repo.DeleteNotification(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Send сохраняет уведомление для одного пользователя и публикует его для доставки по почте.
func (s *NotificationService) Send(ctx context.Context, userID int64, title, message string,
	kind models.NotificationType) (*models.Notification, error) {
	const op = "services.NotificationService.Send"

	title, message, kind, err := normalize(title, message, kind)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateNotifications(ctx, []int64{user.ID}, title, message, kind)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, []models.Recipient{{ID: user.ID, Email: user.Email, Name: user.Name}}, title, message, kind)
	return &created[0], nil
}

// Broadcast рассылает уведомление всем пользователям или только пользователям роли role.
// Возвращает число созданных уведомлений.
func (s *NotificationService) Broadcast(ctx context.Context, title, message string,
	kind models.NotificationType, role string) (int, error) {
	const op = "services.NotificationService.Broadcast"

	title, message, kind, err := normalize(title, message, kind)
	if err != nil {
		return 0, err
	}

	var target models.Role
	if role != "" {
		target = models.Role(role)
		if !target.Valid() {
			return 0, ErrInvalidRole
		}
	}

	recipients, err := s.repo.ListRecipients(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(recipients) == 0 {
		return 0, ErrNoRecipients
	}

	n, err := s.deliver(ctx, recipients, title, message, kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("notification broadcast", slog.Int("recipients", n), slog.String("role", role))
	return n, nil
}

// Notify сохраняет одно уведомление для каждого из recipients и публикует его.
// Пустой список не ошибка.
func (s *NotificationService) Notify(ctx context.Context, recipients []models.Recipient, title, message string,
	kind models.NotificationType) (int, error) {
	const op = "services.NotificationService.Notify"

	title, message, kind, err := normalize(title, message, kind)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	n, err := s.deliver(ctx, recipients, title, message, kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *NotificationService) deliver(ctx context.Context, recipients []models.Recipient, title, message string,
	kind models.NotificationType) (int, error) {
	ids := make([]int64, len(recipients))
	for i, r := range recipients {
		ids[i] = r.ID
	}
	created, err := s.repo.CreateNotifications(ctx, ids, title, message, kind)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, recipients, title, message, kind)
	return len(created), nil
}

// publish отправляет по сообщению на каждого адресата. Ошибки только логируются:
// уведомление уже сохранено во входящих.
func (s *NotificationService) publish(ctx context.Context, recipients []models.Recipient, title, message string,
	kind models.NotificationType) {
	if s.publisher == nil {
		return
	}
	for _, r := range recipients {
		err := s.publisher.Publish(ctx, models.NotificationMessage{
			UserID:  r.ID,
			Email:   r.Email,
			Name:    r.Name,
			Title:   title,
			Message: message,
			Type:    kind,
		})
		if s.recorder != nil {
			s.recorder.Published(err)
		}
		if err != nil {
			s.log.Warn("failed to publish notification", slog.Int64("user_id", r.ID), sl.Err(err))
		}
	}
}

func normalize(title, message string, kind models.NotificationType) (string, string, models.NotificationType, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return "", "", "", ErrInvalidNotification
	}
	t, err := models.ParseNotificationType(string(kind))
	if err != nil {
		return "", "", "", ErrInvalidType
	}
	return title, message, t, nil
}

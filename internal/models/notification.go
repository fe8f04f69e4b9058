package models

import (
	"fmt"
	"time"
)

// NotificationType тип уведомления.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Valid сообщает, входит ли тип в допустимый набор.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationWarning, NotificationSuccess, NotificationError:
		return true
	}
	return false
}

// ParseNotificationType разбирает тип уведомления; пустая строка дает info.
func ParseNotificationType(s string) (NotificationType, error) {
	if s == "" {
		return NotificationInfo, nil
	}
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown notification type %q", s)
	}
	return t, nil
}

// Notification уведомление во входящих пользователя.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"titre"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"lu"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationMessage сообщение, публикуемое в очередь для доставки по почте.
type NotificationMessage struct {
	UserID  int64            `json:"user_id"`
	Email   string           `json:"email"`
	Name    string           `json:"nom"`
	Title   string           `json:"titre"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// Recipient получатель рассылки.
type Recipient struct {
	ID    int64
	Email string
	Name  string
}

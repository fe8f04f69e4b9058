package models

import (
	"fmt"
	"time"
)

// SubscriptionStatus статус подписки на сборщика.
type SubscriptionStatus string

const (
	// StatusActive начальный статус любой новой подписки.
	StatusActive SubscriptionStatus = "actif"
	// StatusInactive подписка приостановлена пользователем.
	StatusInactive SubscriptionStatus = "inactif"
	// StatusSuspended подписка заморожена.
	StatusSuspended SubscriptionStatus = "suspendu"
)

// Valid сообщает, допустим ли статус.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// ParseSubscriptionStatus разбирает строку в SubscriptionStatus.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	st := SubscriptionStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown subscription status %q", s)
	}
	return st, nil
}

// Subscription связь пользователя и сборщика.
// Пара (UserID, CollectorID) уникальна.
type Subscription struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"user_id"`
	CollectorID int64              `json:"collector_id"`
	Status      SubscriptionStatus `json:"statut"`
	CreatedAt   time.Time          `json:"date_subscription"`
}

// SubscriptionView подписка вместе с отображаемыми полями сборщика.
type SubscriptionView struct {
	ID                   int64              `json:"id"`
	CollectorID          int64              `json:"collector_id"`
	Status               SubscriptionStatus `json:"statut"`
	CreatedAt            time.Time          `json:"date_subscription"`
	CollectorName        string             `json:"collector_nom"`
	CollectorDescription string             `json:"collector_description"`
	CollectorContact     string             `json:"collector_contact"`
	CollectorEmail       string             `json:"collector_email"`
	CollectorPhone       string             `json:"collector_telephone"`
	CollectorAddress     string             `json:"collector_adresse"`
	CoverageZone         string             `json:"zone_couverture"`
}

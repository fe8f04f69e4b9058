package models

import "time"

// ReportStatus статус обращения о проблеме.
type ReportStatus string

const (
	ReportNew        ReportStatus = "nouveau"
	ReportInProgress ReportStatus = "en_cours"
	ReportResolved   ReportStatus = "resolu"
)

// Report обращение жителя с привязкой к месту.
type Report struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Location    string       `json:"localisation"`
	Description string       `json:"description"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
	ImageURL    *string      `json:"image_url"`
	Status      ReportStatus `json:"statut"`
	CreatedAt   time.Time    `json:"date_report"`
	UserName    string       `json:"user_nom,omitempty"`
	UserEmail   string       `json:"user_email,omitempty"`
}

// NewReport данные для создания обращения.
type NewReport struct {
	Location    string   `json:"localisation" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

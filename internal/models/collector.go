package models

import (
	"strings"
	"time"
)

// Collector компания, оказывающая услугу вывоза отходов.
type Collector struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nom"`
	Description  string    `json:"description"`
	Contact      string    `json:"contact"`
	Email        string    `json:"email"`
	Phone        string    `json:"telephone"`
	Address      string    `json:"adresse"`
	CoverageZone string    `json:"zone_couverture"`
	CreatedAt    time.Time `json:"date_creation"`
}

// Zones возвращает теги зоны покрытия, разделённые запятой.
func (c Collector) Zones() []string {
	var zones []string
	for _, z := range strings.Split(c.CoverageZone, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	return zones
}

package models

import "time"

// Weekdays дни недели в порядке сортировки расписаний.
var Weekdays = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// Schedule слот вывоза отходов сборщиком.
type Schedule struct {
	ID             int64  `json:"id"`
	Day            string `json:"jour"`
	Hour           string `json:"heure"`
	WasteType      string `json:"type_dechet"`
	Zone           string `json:"zone"`
	CollectorName  string `json:"collector_nom"`
	CollectorPhone string `json:"collector_telephone,omitempty"`
	Contact        string `json:"collector_contact,omitempty"`
}

// WeekdayName возвращает французское название дня недели в формате колонки jour.
func WeekdayName(d time.Weekday) string {
	// time.Sunday == 0, в Weekdays воскресенье последнее.
	return Weekdays[(int(d)+6)%7]
}

// Reminder предстоящий вывоз у сборщика, на которого подписан адресат.
type Reminder struct {
	Recipient
	CollectorName string
	Day           string
	Hour          string
	WasteType     string
	Zone          string
}

// Package models содержит доменные структуры приложения: пользователей,
// сборщиков, расписания, подписки, обращения и уведомления.
// Структуры используются в бизнес-логике, хранилище и HTTP-слое.
package models

import "time"

// User представляет зарегистрированного пользователя.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nom"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"date_creation"`
}

// Identity данные аутентифицированного пользователя, извлечённые из токена.
type Identity struct {
	ID    int64
	Email string
	Role  Role
}

// UserFilter параметры выборки пользователей для администратора.
type UserFilter struct {
	Search string
	Role   Role
	Limit  int
	Offset int
}

// Pagination описывает страницу результата.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// NewPagination считает страницы по общему количеству записей.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

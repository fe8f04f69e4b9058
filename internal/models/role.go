package models

import "fmt"

// Role роль пользователя. Набор значений закрыт: citoyen, collecteur, admin.
type Role string

const (
	// RoleCitizen житель, роль по умолчанию при регистрации.
	RoleCitizen Role = "citoyen"
	// RoleCollector сотрудник компании-сборщика.
	RoleCollector Role = "collecteur"
	// RoleAdmin администратор платформы.
	RoleAdmin Role = "admin"
)

// Roles возвращает все допустимые роли.
func Roles() []Role {
	return []Role{RoleCitizen, RoleCollector, RoleAdmin}
}

// Valid сообщает, входит ли значение в закрытый набор ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleCollector, RoleAdmin:
		return true
	}
	return false
}

// ParseRole разбирает строку в Role. Пустая строка даёт RoleCitizen.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleCitizen, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

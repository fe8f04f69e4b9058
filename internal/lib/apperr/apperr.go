// Package apperr описывает таксономию ошибок приложения.
//
// Каждая ошибка бизнес-уровня несёт Kind, по которому HTTP-слой выбирает
// код ответа. Ошибки без Kind считаются внутренними.
package apperr

import (
	"errors"
	"net/http"
)

// Kind категория ошибки.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// HTTPStatus возвращает HTTP-код для категории.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error ошибка с категорией и сообщением для пользователя.
type Error struct {
	Kind    Kind
	Message string
}

// New создаёт ошибку заданной категории.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf возвращает категорию первой *Error в цепочке err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf возвращает пользовательское сообщение ошибки и признак того,
// что оно найдено в цепочке.
func MessageOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

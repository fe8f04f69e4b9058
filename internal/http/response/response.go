// Package response содержит единый конверт JSON-ответов HTTP-обработчиков
// и преобразование ошибок приложения в HTTP-статусы.
package response

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ecolight/internal/lib/apperr"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

const (
	MsgInternal      = "Erreur interne du serveur"
	MsgInvalidData   = "Données invalides"
	MsgInvalidJSON   = "Format JSON invalide"
	MsgRouteNotFound = "Route non trouvée"
	MsgTooMany       = "Trop de requêtes depuis cette IP, veuillez réessayer plus tard."
)

// Response стандартный конверт ответа.
// Необязательные поля опускаются, если не заданы.
type Response struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message,omitempty"`
	Data        any                `json:"data,omitempty"`
	Errors      []FieldError       `json:"errors,omitempty"`
	Count       *int               `json:"count,omitempty"`
	Pagination  *models.Pagination `json:"pagination,omitempty"`
	UnreadCount *int               `json:"unread_count,omitempty"`
	Token       string             `json:"token,omitempty"`
	User        *models.User       `json:"user,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// FieldError нарушение правила валидации для одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Données invalides"`
}

// OK возвращает успешный ответ с данными.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Message возвращает успешный ответ только с сообщением.
func Message(msg string) Response {
	return Response{Success: true, Message: msg}
}

// List возвращает успешный ответ со списком и его длиной.
func List[T any](items []T) Response {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Response{Success: true, Data: items, Count: &n}
}

// Error возвращает неуспешный ответ с сообщением.
func Error(msg string) Response {
	return Response{Success: false, Message: msg}
}

// Write выставляет статус и отправляет конверт.
func Write(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// FromError выбирает статус и сообщение по категории ошибки.
// Для внутренних ошибок текст скрывается, если exposeInternal ложно.
func FromError(err error, exposeInternal bool) (int, Response) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		resp := Error(MsgInternal)
		if exposeInternal {
			resp.Error = err.Error()
		}
		return http.StatusInternalServerError, resp
	}
	msg, _ := apperr.MessageOf(err)
	return kind.HTTPStatus(), Error(msg)
}

// ValidationError формирует ответ 400 со списком нарушений по полям.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("Le champ %s est requis", err.Field())
		case "email":
			msg = "Email invalide"
		case "min":
			msg = fmt.Sprintf("Le champ %s doit contenir au moins %s caractères", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("Le champ %s doit contenir au plus %s caractères", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("Le champ %s doit valoir l'une de: %s", err.Field(), err.Param())
		case "gt", "gte", "lte":
			msg = fmt.Sprintf("Le champ %s est hors limites", err.Field())
		default:
			msg = fmt.Sprintf("Le champ %s est invalide", err.Field())
		}
		fields = append(fields, FieldError{Field: err.Field(), Message: msg})
	}
	return Response{
		Success: false,
		Message: MsgInvalidData,
		Errors:  fields,
	}
}

// Package broadcast рассылает уведомление всем пользователям или одной роли.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Request struct {
	Title   string `json:"titre" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=info warning success error"`
	Role    string `json:"role" validate:"omitempty,oneof=citoyen collecteur admin"`
}

// Result тело успешного ответа.
type Result struct {
	Recipients int `json:"recipients"`
}

type Service interface {
	Broadcast(ctx context.Context, title, message string, kind models.NotificationType, role string) (int, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Рассылка уведомления
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Уведомление и необязательная роль"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/broadcast [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.broadcast"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.Write(w, r, http.StatusBadRequest, response.Error(response.MsgInvalidJSON))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Write(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, log, "validation failed", err)
		return
	}

	n, err := h.service.Broadcast(r.Context(), req.Title, req.Message, models.NotificationType(req.Type), req.Role)
	if err != nil {
		response.Fail(w, r, log, "failed to broadcast notification", err)
		return
	}

	resp := response.OK(Result{Recipients: n})
	resp.Message = "Notification diffusée avec succès"
	response.Write(w, r, http.StatusCreated, resp)
}

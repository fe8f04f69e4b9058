// Package changepassword меняет пароль текущего пользователя после проверки старого.
package changepassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
)

type Request struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type Service interface {
	ChangePassword(ctx context.Context, userID int64, current, next string) error
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
// @Summary Смена пароля
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Старый и новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /users/change-password [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.changepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

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

	if err := h.service.ChangePassword(r.Context(), id.ID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Fail(w, r, log, "failed to change password", err)
		return
	}

	log.Info("password changed", slog.Int64("user_id", id.ID))
	response.Write(w, r, http.StatusOK, response.Message("Mot de passe changé avec succès"))
}

// Package updateprofile меняет имя текущего пользователя.
package updateprofile

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
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Request struct {
	Name string `json:"nom" validate:"required,max=100"`
}

type Service interface {
	UpdateProfile(ctx context.Context, userID int64, name string) (*models.User, error)
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
// @Summary Обновление профиля
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Новое имя"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /users/profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.updateprofile"

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

	user, err := h.service.UpdateProfile(r.Context(), id.ID, req.Name)
	if err != nil {
		response.Fail(w, r, log, "failed to update profile", err)
		return
	}

	log.Info("profile updated", slog.Int64("user_id", id.ID))
	resp := response.OK(user)
	resp.Message = "Profil mis à jour avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

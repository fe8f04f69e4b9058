// Package profile отдает профиль текущего пользователя.
// Используется маршрутами /auth/profile и /users/profile.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Service interface {
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /auth/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.service.Profile(r.Context(), id.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to get profile", err)
		return
	}
	response.Write(w, r, http.StatusOK, response.OK(user))
}

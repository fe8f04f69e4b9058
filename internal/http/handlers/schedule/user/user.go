// Package user отдает расписания сборщиков, на которых активно подписан пользователь.
package user

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
	ListForUser(ctx context.Context, userID int64) ([]models.Schedule, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Расписания по подпискам пользователя
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /schedules/user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.user"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	schedules, err := h.service.ListForUser(r.Context(), id.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to list user schedules", err)
		return
	}

	resp := response.List(schedules)
	resp.Message = "Horaires récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

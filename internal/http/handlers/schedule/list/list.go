// Package list отдает все расписания вывоза.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Service interface {
	ListAll(ctx context.Context) ([]models.Schedule, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все расписания
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /schedules [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	schedules, err := h.service.ListAll(r.Context())
	if err != nil {
		response.Fail(w, r, log, "failed to list schedules", err)
		return
	}

	resp := response.List(schedules)
	resp.Message = "Horaires récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

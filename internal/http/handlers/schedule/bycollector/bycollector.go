// Package bycollector отдает расписания одного сборщика.
package bycollector

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Service interface {
	ListForCollector(ctx context.Context, collectorID int64) ([]models.Schedule, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Расписания сборщика
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param collectorId path int true "ID сборщика"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /schedules/collector/{collectorId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.bycollector"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	collectorID, ok := response.IDParam(r, "collectorId")
	if !ok {
		response.Write(w, r, http.StatusBadRequest, response.Error("ID du collecteur invalide"))
		return
	}

	schedules, err := h.service.ListForCollector(r.Context(), collectorID)
	if err != nil {
		response.Fail(w, r, log, "failed to list collector schedules", err)
		return
	}

	resp := response.List(schedules)
	resp.Message = "Horaires du collecteur récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

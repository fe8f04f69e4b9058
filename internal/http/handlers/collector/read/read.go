// Package read отдает одного сборщика по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

const msgInvalidID = "ID du collecteur invalide"

type Service interface {
	Get(ctx context.Context, id int64) (*models.Collector, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сборщик по ID
// @Tags Collectors
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сборщика"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /collectors/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.collector.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := response.IDParam(r, "id")
	if !ok {
		response.Write(w, r, http.StatusBadRequest, response.Error(msgInvalidID))
		return
	}

	collector, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, "failed to get collector", err)
		return
	}

	resp := response.OK(collector)
	resp.Message = "Collecteur récupéré avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

// Package search ищет сборщиков по зоне обслуживания.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

type Service interface {
	SearchByZone(ctx context.Context, zone string) ([]models.Collector, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск сборщиков по зоне
// @Tags Collectors
// @Produce json
// @Security BearerAuth
// @Param zone query string true "Зона"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /collectors/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.collector.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	collectors, err := h.service.SearchByZone(r.Context(), r.URL.Query().Get("zone"))
	if err != nil {
		response.Fail(w, r, log, "failed to search collectors", err)
		return
	}

	resp := response.List(collectors)
	resp.Message = "Recherche effectuée avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

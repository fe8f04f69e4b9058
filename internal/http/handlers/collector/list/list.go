// Package list отдает все компании-сборщики.
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
	List(ctx context.Context) ([]models.Collector, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список сборщиков
// @Tags Collectors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /collectors [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.collector.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	collectors, err := h.service.List(r.Context())
	if err != nil {
		response.Fail(w, r, log, "failed to list collectors", err)
		return
	}

	resp := response.List(collectors)
	resp.Message = "Collecteurs récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

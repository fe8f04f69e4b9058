// Package list отдает администратору все обращения.
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
	ListAll(ctx context.Context) ([]models.Report, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все обращения
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /reports [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reports, err := h.service.ListAll(r.Context())
	if err != nil {
		response.Fail(w, r, log, "failed to list reports", err)
		return
	}

	resp := response.List(reports)
	resp.Message = "Signalements récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

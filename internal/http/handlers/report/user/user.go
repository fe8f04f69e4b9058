// Package user отдает обращения текущего пользователя.
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
	ListForUser(ctx context.Context, userID int64) ([]models.Report, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои обращения
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.user"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	reports, err := h.service.ListForUser(r.Context(), who.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to list user reports", err)
		return
	}

	resp := response.List(reports)
	resp.Message = "Signalements récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

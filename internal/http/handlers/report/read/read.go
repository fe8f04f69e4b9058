// Package read отдает обращение владельцу или администратору.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

// MsgInvalidID ответ на нечисловой ID в пути.
const MsgInvalidID = "ID de signalement invalide"

type Service interface {
	Get(ctx context.Context, id int64, who models.Identity) (*models.Report, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обращение по ID
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID обращения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := response.IDParam(r, "id")
	if !ok {
		response.Write(w, r, http.StatusBadRequest, response.Error(MsgInvalidID))
		return
	}

	report, err := h.service.Get(r.Context(), id, who)
	if err != nil {
		response.Fail(w, r, log, "failed to get report", err)
		return
	}

	resp := response.OK(report)
	resp.Message = "Signalement récupéré avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

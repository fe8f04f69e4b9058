// Package remove удаляет обращение текущего пользователя вместе с фото.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/handlers/report/read"
	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
)

type Service interface {
	Delete(ctx context.Context, id, userID int64) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление обращения
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID обращения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.remove"

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
		response.Write(w, r, http.StatusBadRequest, response.Error(read.MsgInvalidID))
		return
	}

	if err := h.service.Delete(r.Context(), id, who.ID); err != nil {
		response.Fail(w, r, log, "failed to delete report", err)
		return
	}

	log.Info("report deleted", slog.Int64("id", id), slog.Int64("user_id", who.ID))
	response.Write(w, r, http.StatusOK, response.Message("Signalement supprimé avec succès"))
}

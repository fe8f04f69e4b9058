// Package markread отмечает одно уведомление прочитанным.
package markread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
)

// MsgInvalidID ответ на нечисловой ID в пути.
const MsgInvalidID = "ID de notification invalide"

type Service interface {
	MarkRead(ctx context.Context, id, userID int64) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметить уведомление прочитанным
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID уведомления"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/{id}/mark-read [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markread"

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

	if err := h.service.MarkRead(r.Context(), id, who.ID); err != nil {
		response.Fail(w, r, log, "failed to mark notification read", err)
		return
	}
	response.Write(w, r, http.StatusOK, response.Message("Notification marquée comme lue"))
}

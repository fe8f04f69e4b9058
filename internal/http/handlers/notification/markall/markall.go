// Package markall отмечает прочитанными все уведомления пользователя.
package markall

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
)

type Service interface {
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметить все уведомления прочитанными
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/mark-all-read [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	n, err := h.service.MarkAllRead(r.Context(), who.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to mark notifications read", err)
		return
	}
	response.Write(w, r, http.StatusOK,
		response.Message(fmt.Sprintf("%d notification(s) marquée(s) comme lue(s)", n)))
}

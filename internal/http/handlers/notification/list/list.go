// Package list отдает страницу входящих уведомлений и число непрочитанных.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	services "github.com/magabrotheeeer/ecolight/internal/services/notification"
)

type Service interface {
	ListForUser(ctx context.Context, userID int64, page, limit int) (*services.Inbox, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои уведомления
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы, по умолчанию 20"
// @Success 200 {object} response.Response
// @Router /notifications/my-notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	inbox, err := h.service.ListForUser(r.Context(), who.ID, page, limit)
	if err != nil {
		response.Fail(w, r, log, "failed to list notifications", err)
		return
	}

	response.Write(w, r, http.StatusOK, response.Response{
		Success:     true,
		Data:        inbox.Items,
		UnreadCount: &inbox.UnreadCount,
		Pagination:  &inbox.Pagination,
	})
}

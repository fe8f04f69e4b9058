// Package list отдает подписки текущего пользователя во всех статусах.
package list

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
	ListForUser(ctx context.Context, userID int64) ([]models.SubscriptionView, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои подписки
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /subscriptions/my-subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.RequireIdentity(w, r)
	if !ok {
		return
	}

	subs, err := h.service.ListForUser(r.Context(), id.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to list subscriptions", err)
		return
	}

	resp := response.List(subs)
	resp.Message = "Abonnements récupérés avec succès"
	response.Write(w, r, http.StatusOK, resp)
}

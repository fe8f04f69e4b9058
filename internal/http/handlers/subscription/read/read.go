// Package read отдает подписку текущего пользователя по ID.
// Чужая подписка неотличима от отсутствующей.
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
const MsgInvalidID = "ID d'abonnement invalide"

type Service interface {
	Get(ctx context.Context, id, userID int64) (*models.SubscriptionView, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписка по ID
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

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

	sub, err := h.service.Get(r.Context(), id, who.ID)
	if err != nil {
		response.Fail(w, r, log, "failed to get subscription", err)
		return
	}
	response.Write(w, r, http.StatusOK, response.OK(sub))
}

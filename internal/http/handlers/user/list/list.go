// Package list отдает администратору постраничный список пользователей
// с поиском по имени или email и фильтром по роли.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
	services "github.com/magabrotheeeer/ecolight/internal/services/user"
)

type Service interface {
	List(ctx context.Context, q services.ListQuery) ([]models.User, models.Pagination, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param search query string false "Поиск по имени или email"
// @Param role query string false "Роль"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	users, pagination, err := h.service.List(r.Context(), services.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Role:   q.Get("role"),
	})
	if err != nil {
		response.Fail(w, r, log, "failed to list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	response.Write(w, r, http.StatusOK, response.Response{
		Success:    true,
		Data:       users,
		Pagination: &pagination,
	})
}

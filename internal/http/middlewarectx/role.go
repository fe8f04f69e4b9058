package middlewarectx

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

const (
	MsgAuthRequired = "Authentification requise"
	MsgForbidden    = "Accès refusé - Privilèges insuffisants"
)

// ForbiddenResponse тело ответа 403.
type ForbiddenResponse struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	RequiredRoles []models.Role `json:"required_roles"`
	UserRole      models.Role   `json:"user_role"`
}

// RequireRoles пропускает запрос, только если роль пользователя входит в roles.
// Ставится после Auth. Пустой список или неизвестная роль считаются ошибкой
// конфигурации маршрутов и приводят к панике при сборке роутера.
func RequireRoles(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	if len(roles) == 0 {
		panic("middlewarectx.RequireRoles: no roles given")
	}
	for _, role := range roles {
		if !role.Valid() {
			panic(fmt.Sprintf("middlewarectx.RequireRoles: unknown role %q", role))
		}
	}
	allowed := slices.Clone(roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				response.Write(w, r, http.StatusUnauthorized, response.Error(MsgAuthRequired))
				return
			}
			if !slices.Contains(allowed, id.Role) {
				log.Info("access denied",
					slog.Int64("user_id", id.ID),
					slog.String("role", id.Role.String()),
					slog.String("path", r.URL.Path))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, ForbiddenResponse{
					Success:       false,
					Message:       MsgForbidden,
					RequiredRoles: allowed,
					UserRole:      id.Role,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

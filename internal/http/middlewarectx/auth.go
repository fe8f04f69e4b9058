// Package middlewarectx содержит HTTP middleware приложения: проверку
// bearer-токена, ограничение по ролям, лимит запросов и CORS.
//
// Auth кладет в контекст запроса models.Identity; обработчики читают ее
// через IdentityFrom.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/jwt"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

const (
	MsgTokenMissing   = "Token d'authentification manquant"
	MsgTokenMalformed = "Format de token invalide"
	MsgTokenExpired   = "Token expiré"
	MsgTokenInvalid   = "Token invalide"
)

type ctxKey struct{}

// Verifier проверяет токен и возвращает его claims.
type Verifier interface {
	Verify(tokenStr string) (*jwt.Claims, error)
}

// WithIdentity возвращает контекст с данными пользователя.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom извлекает данные пользователя, положенные Auth.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(models.Identity)
	return id, ok
}

// Auth проверяет заголовок Authorization вида "Bearer <token>".
// Без заголовка, при другой форме или невалидном токене отвечает 401.
func Auth(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if header == "" {
				log.Debug("authorization header missing")
				response.Write(w, r, http.StatusUnauthorized, response.Error(MsgTokenMissing))
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				log.Debug("authorization header malformed")
				response.Write(w, r, http.StatusUnauthorized, response.Error(MsgTokenMalformed))
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				msg := MsgTokenInvalid
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = MsgTokenExpired
				}
				response.Write(w, r, http.StatusUnauthorized, response.Error(msg))
				return
			}

			ctx := WithIdentity(r.Context(), models.Identity{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity возвращает данные пользователя или отвечает 401, если Auth
// не был вызван перед обработчиком.
func RequireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		response.Write(w, r, http.StatusUnauthorized, response.Error(MsgAuthRequired))
	}
	return id, ok
}

package response

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
)

type exposeKey struct{}

// ExposeInternal разрешает отдавать текст внутренних ошибок в поле error.
// Включается только в окружении разработки.
func ExposeInternal(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), exposeKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func exposed(r *http.Request) bool {
	enabled, _ := r.Context().Value(exposeKey{}).(bool)
	return enabled
}

// Fail пишет ответ по ошибке сервиса. Внутренние ошибки логируются как error,
// ожидаемые отказы как info.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	status, resp := FromError(err, exposed(r))
	if status >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
	} else {
		log.Info(msg, sl.Err(err), slog.Int("status", status))
	}
	Write(w, r, status, resp)
}

// IDParam разбирает положительный целый параметр пути.
func IDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

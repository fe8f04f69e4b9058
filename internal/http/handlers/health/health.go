// Package health отдает состояние процесса и его зависимостей.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
)

// Pinger зависимость, доступность которой проверяется.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response тело ответа /health.
type Response struct {
	Success   bool              `json:"success"`
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	log     *slog.Logger
	started time.Time
	checks  map[string]Pinger
	now     func() time.Time
}

// New создает обработчик. checks может быть пустым: тогда проверяется только процесс.
func New(log *slog.Logger, started time.Time, checks map[string]Pinger) *Handler {
	return &Handler{log: log, started: started, checks: checks, now: time.Now}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now := h.now()
	resp := Response{
		Success:   true,
		Status:    "OK",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.started).Seconds(),
	}

	if len(h.checks) > 0 {
		resp.Checks = h.runChecks(ctx)
		for _, state := range resp.Checks {
			if state != "up" {
				resp.Success = false
				resp.Status = "DEGRADED"
			}
		}
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusServiceUnavailable
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// runChecks опрашивает зависимости параллельно. Ошибка одной проверки
// не прерывает остальные.
func (h *Handler) runChecks(ctx context.Context) map[string]string {
	var (
		mu     sync.Mutex
		g      errgroup.Group
		result = make(map[string]string, len(h.checks))
	)
	for name, p := range h.checks {
		g.Go(func() error {
			state := "up"
			if err := p.Ping(ctx); err != nil {
				h.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
				state = "down"
			}
			mu.Lock()
			result[name] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return result
}

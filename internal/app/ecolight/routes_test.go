package ecolight

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ecolight/internal/cache"
	"github.com/magabrotheeeer/ecolight/internal/config"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/health"
	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/lib/jwt"
	"github.com/magabrotheeeer/ecolight/internal/lib/metrics"
	"github.com/magabrotheeeer/ecolight/internal/lib/password"
	"github.com/magabrotheeeer/ecolight/internal/models"
	authservice "github.com/magabrotheeeer/ecolight/internal/services/auth"
	collectorservice "github.com/magabrotheeeer/ecolight/internal/services/collector"
	notificationservice "github.com/magabrotheeeer/ecolight/internal/services/notification"
	reportservice "github.com/magabrotheeeer/ecolight/internal/services/report"
	scheduleservice "github.com/magabrotheeeer/ecolight/internal/services/schedule"
	subscriptionservice "github.com/magabrotheeeer/ecolight/internal/services/subscription"
	userservice "github.com/magabrotheeeer/ecolight/internal/services/user"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testApp struct {
	router    http.Handler
	tokens    *jwt.MakerImpl
	sql       sqlmock.Sqlmock
	uploadDir string
}

func newTestApp(t *testing.T, requests int) *testApp {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewWithDB(db)

	mr := miniredis.RunT(t)
	redisCache, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisCache.Close() })

	images, err := reportservice.NewDiskImageStore(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	tokens := jwt.NewJWTMaker("test-secret", jwt.DefaultTTL)
	hasher := password.NewHasher(4)
	notifications := notificationservice.NewNotificationService(store, nil, m, logger)

	uploadDir := t.TempDir()
	router := chi.NewRouter()
	RegisterRoutes(router, Options{
		Logger:     logger,
		Tokens:     tokens,
		Limiter:    middlewarectx.NewIPLimiter(requests, time.Minute),
		Metrics:    m,
		CORSOrigin: "http://localhost:3001",
		UploadDir:  uploadDir,
		Started:    time.Now(),
		Checks: map[string]health.Pinger{
			"postgres": pingFunc(func(context.Context) error { return nil }),
			"redis":    redisCache,
		},
	}, Services{
		Auth:          authservice.NewAuthService(store, hasher, tokens, logger),
		Users:         userservice.NewUserService(store, hasher, logger),
		Collectors:    collectorservice.NewCollectorService(store, redisCache, m, time.Minute, logger),
		Schedules:     scheduleservice.NewScheduleService(store),
		Subscriptions: subscriptionservice.NewSubscriptionService(store, redisCache, notifications, time.Minute, logger),
		Reports:       reportservice.NewReportService(store, images, logger),
		Notifications: notifications,
	})

	return &testApp{router: router, tokens: tokens, sql: sqlMock, uploadDir: uploadDir}
}

func (a *testApp) do(t *testing.T, method, path string, role models.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		token, err := a.tokens.Issue(1, "awa@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestRoutesGates(t *testing.T) {
	app := newTestApp(t, 100)

	tests := []struct {
		name       string
		method     string
		path       string
		role       models.Role
		wantStatus int
		wantBody   string
	}{
		{
			name:       "профиль без токена",
			method:     http.MethodGet,
			path:       "/api/auth/profile",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token d'authentification manquant",
		},
		{
			name:       "список пользователей для жителя",
			method:     http.MethodGet,
			path:       "/api/users",
			role:       models.RoleCitizen,
			wantStatus: http.StatusForbidden,
			wantBody:   `"required_roles":["admin"]`,
		},
		{
			name:       "все обращения для сборщика",
			method:     http.MethodGet,
			path:       "/api/reports",
			role:       models.RoleCollector,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "рассылка для жителя",
			method:     http.MethodPost,
			path:       "/api/notifications/broadcast",
			role:       models.RoleCitizen,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "неизвестный маршрут",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
			wantBody:   "Route non trouvée",
		},
		{
			name:       "health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   `"status":"OK"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, tt.method, tt.path, tt.role)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
	assert.NoError(t, app.sql.ExpectationsWereMet())
}

func TestRoutesSchedulesAndMetrics(t *testing.T) {
	app := newTestApp(t, 100)

	app.sql.ExpectQuery("SELECT sch.id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "jour", "heure", "type_dechet", "zone", "nom", "telephone", "contact"}).
			AddRow(1, "Lundi", "08:00", "Ménagers", "Cocody", "EcoCollect", "0102030405", "Awa"),
	)

	w := app.do(t, http.MethodGet, "/api/schedules", models.RoleCitizen)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"jour":"Lundi"`)
	assert.NoError(t, app.sql.ExpectationsWereMet())

	w = app.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ecolight_http_requests_total{method="GET",path="/api/schedules`)
}

func TestRoutesRateLimit(t *testing.T) {
	app := newTestApp(t, 2)

	for range 2 {
		w := app.do(t, http.MethodGet, "/api/auth/profile", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := app.do(t, http.MethodGet, "/api/auth/profile", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// health вне /api и не ограничивается.
	w = app.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRateLimitIgnoresForwardedFor(t *testing.T) {
	app := newTestApp(t, 2)

	limited := 0
	for i := range 10 {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 8, limited, "один сокет делит одну корзину, какие бы заголовки он ни слал")
}

func TestRoutesUploadsDoNotListDirectories(t *testing.T) {
	app := newTestApp(t, 100)
	require.NoError(t, os.MkdirAll(filepath.Join(app.uploadDir, "reports"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(app.uploadDir, "reports", "secret-uuid.jpg"), []byte("JPEG"), 0o644))

	for _, path := range []string{"/uploads/reports/", "/uploads/reports", "/uploads/"} {
		w := app.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.NotContains(t, w.Body.String(), "secret-uuid.jpg", path)
	}

	w := app.do(t, http.MethodGet, "/uploads/reports/secret-uuid.jpg", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "JPEG", w.Body.String())
}

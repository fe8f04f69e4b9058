package ecolight

import (
	"io/fs"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/ecolight/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/auth/register"
	collectorlist "github.com/magabrotheeeer/ecolight/internal/http/handlers/collector/list"
	collectorread "github.com/magabrotheeeer/ecolight/internal/http/handlers/collector/read"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/collector/search"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/health"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/broadcast"
	notificationlist "github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/markall"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/markread"
	notificationremove "github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/remove"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/notification/send"
	reportcreate "github.com/magabrotheeeer/ecolight/internal/http/handlers/report/create"
	reportlist "github.com/magabrotheeeer/ecolight/internal/http/handlers/report/list"
	reportread "github.com/magabrotheeeer/ecolight/internal/http/handlers/report/read"
	reportremove "github.com/magabrotheeeer/ecolight/internal/http/handlers/report/remove"
	reportuser "github.com/magabrotheeeer/ecolight/internal/http/handlers/report/user"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/schedule/bycollector"
	schedulelist "github.com/magabrotheeeer/ecolight/internal/http/handlers/schedule/list"
	scheduleuser "github.com/magabrotheeeer/ecolight/internal/http/handlers/schedule/user"
	subscriptioncreate "github.com/magabrotheeeer/ecolight/internal/http/handlers/subscription/create"
	subscriptionlist "github.com/magabrotheeeer/ecolight/internal/http/handlers/subscription/list"
	subscriptionread "github.com/magabrotheeeer/ecolight/internal/http/handlers/subscription/read"
	subscriptionremove "github.com/magabrotheeeer/ecolight/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/subscription/updatestatus"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/user/changepassword"
	userlist "github.com/magabrotheeeer/ecolight/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/user/updateprofile"
	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/http/response"
	"github.com/magabrotheeeer/ecolight/internal/lib/metrics"
	"github.com/magabrotheeeer/ecolight/internal/models"
	authservice "github.com/magabrotheeeer/ecolight/internal/services/auth"
	collectorservice "github.com/magabrotheeeer/ecolight/internal/services/collector"
	notificationservice "github.com/magabrotheeeer/ecolight/internal/services/notification"
	reportservice "github.com/magabrotheeeer/ecolight/internal/services/report"
	scheduleservice "github.com/magabrotheeeer/ecolight/internal/services/schedule"
	subscriptionservice "github.com/magabrotheeeer/ecolight/internal/services/subscription"
	userservice "github.com/magabrotheeeer/ecolight/internal/services/user"
)

// Services сервисы, которые обслуживают маршруты API.
type Services struct {
	Auth          *authservice.AuthService
	Users         *userservice.UserService
	Collectors    *collectorservice.CollectorService
	Schedules     *scheduleservice.ScheduleService
	Subscriptions *subscriptionservice.SubscriptionService
	Reports       *reportservice.ReportService
	Notifications *notificationservice.NotificationService
}

// Options инфраструктура маршрутизатора.
type Options struct {
	Logger         *slog.Logger
	Tokens         middlewarectx.Verifier
	Limiter        *middlewarectx.IPLimiter
	Metrics        *metrics.Metrics
	CORSOrigin     string
	TrustedProxies []netip.Prefix
	UploadDir      string
	ExposeInternal bool
	Started        time.Time
	Checks         map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, opts Options, s Services) {
	logger := opts.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middlewarectx.RealIP(opts.TrustedProxies),
		middleware.Logger,
		middleware.Recoverer,
		opts.Metrics.Middleware,
		middlewarectx.CORS(opts.CORSOrigin),
		response.ExposeInternal(opts.ExposeInternal),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Write(w, r, http.StatusNotFound, response.Error(response.MsgRouteNotFound))
	})

	adminOnly := middlewarectx.RequireRoles(logger, models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimit(opts.Limiter, logger))

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Auth(opts.Tokens, logger))

			r.Get("/auth/profile", profile.New(logger, s.Auth).ServeHTTP)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", profile.New(logger, s.Users).ServeHTTP)
				r.Put("/profile", updateprofile.New(logger, s.Users).ServeHTTP)
				r.Put("/change-password", changepassword.New(logger, s.Users).ServeHTTP)
				r.Get("/collectors", collectorlist.New(logger, s.Collectors).ServeHTTP)
				r.With(adminOnly).Get("/", userlist.New(logger, s.Users).ServeHTTP)
			})

			r.Route("/collectors", func(r chi.Router) {
				r.Get("/", collectorlist.New(logger, s.Collectors).ServeHTTP)
				r.Get("/search", search.New(logger, s.Collectors).ServeHTTP)
				r.Get("/{id}", collectorread.New(logger, s.Collectors).ServeHTTP)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", schedulelist.New(logger, s.Schedules).ServeHTTP)
				r.Get("/user", scheduleuser.New(logger, s.Schedules).ServeHTTP)
				r.Get("/collector/{collectorId}", bycollector.New(logger, s.Schedules).ServeHTTP)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", subscriptioncreate.New(logger, s.Subscriptions).ServeHTTP)
				r.Get("/my-subscriptions", subscriptionlist.New(logger, s.Subscriptions).ServeHTTP)
				r.Get("/{id}", subscriptionread.New(logger, s.Subscriptions).ServeHTTP)
				r.Put("/{id}/status", updatestatus.New(logger, s.Subscriptions).ServeHTTP)
				r.Delete("/{id}", subscriptionremove.New(logger, s.Subscriptions).ServeHTTP)
			})

			r.Route("/reports", func(r chi.Router) {
				r.With(adminOnly).Get("/", reportlist.New(logger, s.Reports).ServeHTTP)
				r.Post("/", reportcreate.New(logger, s.Reports).ServeHTTP)
				r.Get("/user", reportuser.New(logger, s.Reports).ServeHTTP)
				r.Get("/{id}", reportread.New(logger, s.Reports).ServeHTTP)
				r.Delete("/{id}", reportremove.New(logger, s.Reports).ServeHTTP)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/my-notifications", notificationlist.New(logger, s.Notifications).ServeHTTP)
				r.Put("/mark-all-read", markall.New(logger, s.Notifications).ServeHTTP)
				r.Put("/{id}/mark-read", markread.New(logger, s.Notifications).ServeHTTP)
				r.Delete("/{id}", notificationremove.New(logger, s.Notifications).ServeHTTP)
				r.With(adminOnly).Post("/send", send.New(logger, s.Notifications).ServeHTTP)
				r.With(adminOnly).Post("/broadcast", broadcast.New(logger, s.Notifications).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, opts.Started, opts.Checks).ServeHTTP)
	r.Handle("/metrics", opts.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesOnly{http.Dir(opts.UploadDir)})))
}

// filesOnly отдает только файлы: каталоги выглядят отсутствующими,
// поэтому имена загруженных изображений нельзя перечислить.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

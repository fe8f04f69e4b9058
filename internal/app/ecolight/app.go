// Package ecolight собирает HTTP-приложение: хранилище, кеш, брокер,
// сервисы и маршруты.
package ecolight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ecolight/internal/cache"
	"github.com/magabrotheeeer/ecolight/internal/config"
	"github.com/magabrotheeeer/ecolight/internal/http/handlers/health"
	"github.com/magabrotheeeer/ecolight/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ecolight/internal/lib/jwt"
	"github.com/magabrotheeeer/ecolight/internal/lib/metrics"
	"github.com/magabrotheeeer/ecolight/internal/lib/password"
	"github.com/magabrotheeeer/ecolight/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/migrations"
	authservice "github.com/magabrotheeeer/ecolight/internal/services/auth"
	collectorservice "github.com/magabrotheeeer/ecolight/internal/services/collector"
	notificationservice "github.com/magabrotheeeer/ecolight/internal/services/notification"
	reportservice "github.com/magabrotheeeer/ecolight/internal/services/report"
	scheduleservice "github.com/magabrotheeeer/ecolight/internal/services/schedule"
	subscriptionservice "github.com/magabrotheeeer/ecolight/internal/services/subscription"
	userservice "github.com/magabrotheeeer/ecolight/internal/services/user"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	trusted, err := middlewarectx.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("database schema is up to date")

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	images, imagesCheck, err := newImageStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	// Без брокера уведомления сохраняются в базе, но не уходят на почту.
	var publisher notificationservice.Publisher
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, email delivery disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
		if err != nil {
			logger.Warn("failed to setup rabbitmq channel, email delivery disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			app.amqpConn = conn
			app.publisher = rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange, rabbitmq.UserRoutingKey)
			publisher = app.publisher
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL.Std())
	hasher := password.NewHasher(cfg.BcryptCost)

	notifications := notificationservice.NewNotificationService(db, publisher, m, logger)
	services := Services{
		Auth:          authservice.NewAuthService(db, hasher, tokens, logger),
		Users:         userservice.NewUserService(db, hasher, logger),
		Collectors:    collectorservice.NewCollectorService(db, cacheRedis, m, cfg.CacheTTL, logger),
		Schedules:     scheduleservice.NewScheduleService(db),
		Subscriptions: subscriptionservice.NewSubscriptionService(db, cacheRedis, notifications, cfg.CacheTTL, logger),
		Reports:       reportservice.NewReportService(db, images, logger),
		Notifications: notifications,
	}

	checks := map[string]health.Pinger{
		"postgres": db,
		"redis":    cacheRedis,
	}
	if imagesCheck != nil {
		checks["s3"] = imagesCheck
	}

	router := chi.NewRouter()
	RegisterRoutes(router, Options{
		Logger:         logger,
		Tokens:         tokens,
		Limiter:        middlewarectx.NewIPLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Metrics:        m,
		CORSOrigin:     cfg.CORSOrigin,
		TrustedProxies: trusted,
		UploadDir:      cfg.UploadDir,
		ExposeInternal: cfg.IsDevelopment(),
		Started:        time.Now(),
		Checks:         checks,
	}, services)

	app.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}

// newImageStore выбирает хранилище изображений по IMAGE_STORAGE. Для S3
// дополнительно возвращается проверка доступности бакета.
func newImageStore(ctx context.Context, cfg *config.Config) (reportservice.ImageStore, health.Pinger, error) {
	switch cfg.ImageStorage.Driver {
	case "", "disk":
		store, err := reportservice.NewDiskImageStore(cfg.UploadDir)
		return store, nil, err
	case "s3":
		store, err := reportservice.NewS3ImageStore(ctx, cfg.ImageStorage)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("ecolight.newImageStore: unknown image storage driver %q", cfg.ImageStorage.Driver)
	}
}

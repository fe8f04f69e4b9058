// Package scheduler собирает процесс напоминаний о вывозе: хранилище,
// брокер и сервис уведомлений.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ecolight/internal/config"
	"github.com/magabrotheeeer/ecolight/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	notificationservice "github.com/magabrotheeeer/ecolight/internal/services/notification"
	schedulerservice "github.com/magabrotheeeer/ecolight/internal/services/scheduler"
	"github.com/magabrotheeeer/ecolight/internal/storage"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	cfg              config.Reminder
	db               *storage.Storage
	conn             *amqp.Connection
	publisher        *rabbitmq.Publisher
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange, rabbitmq.UserRoutingKey)

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(publisher, conn, logger)
		return nil, err
	}

	notifications := notificationservice.NewNotificationService(db, publisher, nil, logger)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(db, notifications, logger),
		cfg:              cfg.Reminder,
		db:               db,
		conn:             conn,
		publisher:        publisher,
		logger:           logger,
	}, nil
}

func closeResources(publisher *rabbitmq.Publisher, conn *amqp.Connection, logger *slog.Logger) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler started", slog.String("cron", a.cfg.Cron))
	runErr := a.schedulerService.Run(ctx, a.cfg.Cron)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.publisher, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return runErr
}

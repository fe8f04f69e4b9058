// Package sender собирает процесс доставки уведомлений по почте.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ecolight/internal/config"
	"github.com/magabrotheeeer/ecolight/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/ecolight/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	queues        []rabbitmq.QueueConfig
	workers       int
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to RabbitMQ")

	queues := rabbitmq.NotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		queues:        queues,
		workers:       cfg.RabbitMQ.Workers,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// Run запускает потребителей всех очередей уведомлений и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	for _, q := range a.queues {
		err := rabbitmq.ConsumeMessages(ctx, a.logger, a.ch, q.QueueName, a.workers, a.senderService.Handle)
		if err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
		a.logger.Info("consuming", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}

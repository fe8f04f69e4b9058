package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
)

// ErrPermanent оборачивается обработчиком, когда повторная доставка
// сообщения заведомо не поможет.
var ErrPermanent = errors.New("permanent failure")

// ConsumeMessages читает очередь queueName и передаёт тела сообщений в handler,
// обрабатывая не более workers сообщений одновременно. Исход каждой доставки
// определяет settle.
func ConsumeMessages(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, workers int, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					settle(log, queueName, delivery, handler(delivery.Body))
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// settle подтверждает успешно обработанное сообщение. Ошибка возвращает сообщение
// в очередь один раз; постоянная ошибка или повторный сбой уже перепосланного
// сообщения отклоняют его без возврата, и брокер переносит его в DeadLetterQueue.
func settle(log *slog.Logger, queueName string, d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !d.Redelivered && !errors.Is(err, ErrPermanent)
	log.Error("failed to handle message",
		slog.String("queue", queueName),
		slog.Bool("redelivered", d.Redelivered),
		slog.Bool("requeue", requeue),
		sl.Err(err),
	)
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}

package rabbitmq

import "github.com/streadway/amqp"

const (
	// NotificationsExchange direct-exchange для пользовательских уведомлений.
	NotificationsExchange = "notifications"
	// UserRoutingKey ключ маршрутизации уведомлений конкретному пользователю.
	UserRoutingKey = "user"
	// DeadLetterExchange fanout-exchange для отклоненных уведомлений.
	DeadLetterExchange = "notifications.dlx"
	// DeadLetterQueue хранит уведомления, которые не удалось доставить.
	DeadLetterQueue = "notifications.dead"
)

// QueueConfig описывает очередь и ключ её привязки к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые читает отправщик уведомлений.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.user", RoutingKey: UserRoutingKey},
	}
}

// queueArgs аргументы рабочей очереди: отклоненные сообщения уходят в DeadLetterExchange.
func queueArgs() amqp.Table {
	return amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
}

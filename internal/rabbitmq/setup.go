package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// AccountsExchange topic-обменник событий учётных записей.
const AccountsExchange = "accounts"

// Ключи событий учётных записей.
const (
	RoutingKeyAccountRegistered      = "account.registered"
	RoutingKeyPasswordResetRequested = "account.password_reset_requested"
)

// Очереди, из которых читает рассыльщик писем.
const (
	QueueAccountRegistered      = "accounts.registered"
	QueuePasswordResetRequested = "accounts.password_reset"
)

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// AccountQueues очереди, которые объявляются при старте сервиса.
func AccountQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueAccountRegistered, RoutingKey: RoutingKeyAccountRegistered},
		{QueueName: QueuePasswordResetRequested, RoutingKey: RoutingKeyPasswordResetRequested},
	}
}

// SetupChannel открывает канал, объявляет обменник и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err = ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}

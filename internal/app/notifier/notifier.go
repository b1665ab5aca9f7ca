// Package notifier собирает сервис писем: очереди RabbitMQ и SMTP.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodshare/internal/config"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/lib/smtp"
	"github.com/magabrotheeeer/foodshare/internal/rabbitmq"
	notifierservice "github.com/magabrotheeeer/foodshare/internal/services/notifier"
)

// App потребитель событий учётных записей.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	notifier *notifierservice.Service
	logger   *slog.Logger
}

// New подключается к брокеру и объявляет очереди.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	if cfg.RabbitURL == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("rabbitmq url is required"))
	}
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("smtp host is required"))
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.AccountsExchange, rabbitmq.AccountQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:     conn,
		ch:       ch,
		notifier: notifierservice.NewService(smtp.NewTransport(cfg.SMTP, logger), logger),
		logger:   logger,
	}, nil
}

// Run обрабатывает события до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	handlers := map[string]func([]byte) error{
		rabbitmq.QueueAccountRegistered:      a.notifier.AccountRegistered,
		rabbitmq.QueuePasswordResetRequested: a.notifier.PasswordResetRequested,
	}

	var stopped []<-chan struct{}
	for _, q := range rabbitmq.AccountQueues() {
		handler, ok := handlers[q.QueueName]
		if !ok {
			continue
		}
		done, err := rabbitmq.ConsumeMessages(ctx, a.ch, q.QueueName, handler, a.logger)
		if err != nil {
			a.close()
			return err
		}
		stopped = append(stopped, done)
		a.logger.Info("consuming queue", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")
	for _, done := range stopped {
		<-done
	}
	a.close()
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

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage сериализует message в JSON и публикует его как persistent-сообщение.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AccountRegisteredEvent тело события account.registered. Пароль и хэш не передаются.
type AccountRegisteredEvent struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	City         string    `json:"city"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// PasswordResetRequestedEvent тело события account.password_reset_requested.
// Код нужен получателю письма, в базе хранится только его хэш.
type PasswordResetRequestedEvent struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Publisher публикует события учётных записей.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
	}
}

// AccountRegistered публикует событие о новой учётной записи.
func (p *Publisher) AccountRegistered(ctx context.Context, account *models.Account) error {
	const op = "rabbitmq.AccountRegistered"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	event := AccountRegisteredEvent{
		UserID:       account.ID,
		Email:        account.Email,
		Name:         account.Name,
		Role:         account.Role.String(),
		City:         account.City,
		RegisteredAt: account.CreatedAt,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := PublishMessage(p.ch, p.exchange, RoutingKeyAccountRegistered, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PasswordResetRequested публикует код восстановления пароля для отправки письмом.
func (p *Publisher) PasswordResetRequested(ctx context.Context, account *models.Account, code string, expiresAt time.Time) error {
	const op = "rabbitmq.PasswordResetRequested"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	event := PasswordResetRequestedEvent{
		UserID:    account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Code:      code,
		ExpiresAt: expiresAt,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := PublishMessage(p.ch, p.exchange, RoutingKeyPasswordResetRequested, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

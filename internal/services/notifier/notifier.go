// Package notifier отправляет письма по событиям учётных записей.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/lib/smtp"
	"github.com/magabrotheeeer/foodshare/internal/rabbitmq"
)

const (
	welcomeSubject = "Добро пожаловать в Foodshare"
	resetSubject   = "Код восстановления пароля Foodshare"
)

// Service отправляет приветственные письма и коды восстановления пароля.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
		now:       time.Now,
	}
}

// AccountRegistered обрабатывает событие account.registered.
// Битые сообщения и события без адреса пропускаются: повторная доставка их не исправит.
func (s *Service) AccountRegistered(body []byte) error {
	const op = "notifier.AccountRegistered"
	log := s.log.With(slog.String("op", op))

	var event rabbitmq.AccountRegisteredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal event, dropped", sl.Err(err))
		return nil
	}
	if event.Email == "" {
		log.Warn("event without email, dropped", slog.String("user_id", event.UserID))
		return nil
	}

	name := event.Name
	if name == "" {
		name = event.Email
	}
	text := fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Ваш аккаунт в Foodshare создан. Город: %s.\n"+
		"Войдите в приложение, чтобы найти еду рядом с вами.", name, event.City)

	if err := s.sendEmail([]string{event.Email}, welcomeSubject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("welcome email sent", sl.Email(event.Email))
	return nil
}

// PasswordResetRequested обрабатывает событие account.password_reset_requested.
// Просроченный код не отправляется.
func (s *Service) PasswordResetRequested(body []byte) error {
	const op = "notifier.PasswordResetRequested"
	log := s.log.With(slog.String("op", op))

	var event rabbitmq.PasswordResetRequestedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal event, dropped", sl.Err(err))
		return nil
	}
	if event.Email == "" || event.Code == "" {
		log.Warn("event without email or code, dropped", slog.String("user_id", event.UserID))
		return nil
	}
	if !event.ExpiresAt.After(s.now()) {
		log.Warn("reset code already expired, dropped", slog.String("user_id", event.UserID))
		return nil
	}

	name := event.Name
	if name == "" {
		name = event.Email
	}
	minutes := int(event.ExpiresAt.Sub(s.now()).Round(time.Minute).Minutes())
	text := fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Код для восстановления пароля: %s\n"+
		"Код действует %d мин. Если вы не запрашивали восстановление, проигнорируйте это письмо.",
		name, event.Code, minutes)

	if err := s.sendEmail([]string{event.Email}, resetSubject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("reset code sent", sl.Email(event.Email))
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to: %w", err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}

// Package passwordreset восстанавливает доступ к учётной записи по коду из письма.
//
// Поток состоит из трёх шагов: запрос кода на email, обмен кода на одноразовый
// токен сброса и установка нового пароля по токену. В базе хранятся только
// хэши кода и токена.
package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

const (
	// CodeTTL время жизни кода и выданного по нему токена.
	CodeTTL = 15 * time.Minute
	// MaxAttempts число попыток ввода одного кода.
	MaxAttempts = 5
	// CodeLength число цифр в коде.
	CodeLength = 6

	tokenBytes = 32
)

var (
	ErrInvalidCode  = errors.New("invalid or expired reset code")
	ErrInvalidToken = errors.New("invalid or expired reset token")
	// ErrUnavailable коды некуда отправить: публикация событий не настроена.
	ErrUnavailable = errors.New("password reset is unavailable")
)

// Store хранилище учётных записей и кодов восстановления.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)
	CreatePasswordReset(ctx context.Context, userID, codeHash string, ttl time.Duration) error
	TakeResetAttempt(ctx context.Context, userID string, maxAttempts int) (string, error)
	SetResetToken(ctx context.Context, userID, codeHash, tokenHash string) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string) (string, error)
}

// Hasher хэширует новый пароль.
type Hasher interface {
	Hash(plain string) (string, error)
}

// Publisher доставляет код пользователю.
type Publisher interface {
	PasswordResetRequested(ctx context.Context, account *models.Account, code string, expiresAt time.Time) error
}

// Observer получает исход каждой операции для метрик.
type Observer interface {
	AuthAttempt(operation, outcome string)
}

// Option настраивает Service.
type Option func(*Service)

// WithObserver подключает сбор метрик.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithRandom подменяет источник случайных байтов для кодов и токенов.
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		s.random = r
	}
}

// Service реализует восстановление пароля.
type Service struct {
	store     Store
	hasher    Hasher
	publisher Publisher
	log       *slog.Logger
	observer  Observer
	random    io.Reader
	now       func() time.Time
}

// NewService создает новый экземпляр Service. publisher может быть nil,
// тогда RequestCode возвращает ErrUnavailable.
func NewService(store Store, hasher Hasher, publisher Publisher, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		hasher:    hasher,
		publisher: publisher,
		log:       log,
		random:    rand.Reader,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCode выпускает новый код и отправляет его на email. Прежний код
// перестаёт действовать. Для неизвестного или неактивного email ничего не
// происходит и ошибка не возвращается, чтобы ответ не выдавал наличие учётной записи.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	const op = "passwordreset.RequestCode"
	log := s.log.With(slog.String("op", op))

	email = models.NormalizeEmail(email)
	if email == "" {
		s.observe("reset_request", "invalid")
		return &auth.ValidationError{Msg: "email is required"}
	}
	if s.publisher == nil {
		s.observe("reset_request", "error")
		return ErrUnavailable
	}

	account, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("reset requested for unknown email")
			s.observe("reset_request", "not_found")
			return nil
		}
		s.observe("reset_request", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	if !account.IsActive {
		log.Info("reset requested for inactive account", slog.String("user_id", account.ID))
		s.observe("reset_request", "inactive")
		return nil
	}

	code, err := s.newCode()
	if err != nil {
		s.observe("reset_request", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.store.CreatePasswordReset(ctx, account.ID, hashCode(account.ID, code), CodeTTL); err != nil {
		s.observe("reset_request", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.publisher.PasswordResetRequested(ctx, account, code, s.now().Add(CodeTTL)); err != nil {
		s.observe("reset_request", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("reset code issued", slog.String("user_id", account.ID), sl.Email(account.Email))
	s.observe("reset_request", "success")
	return nil
}

// VerifyCode проверяет код и возвращает одноразовый токен сброса.
// Каждый вызов расходует попытку, после MaxAttempts код недействителен.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (string, error) {
	const op = "passwordreset.VerifyCode"

	email = models.NormalizeEmail(email)
	if email == "" || !isCode(code) {
		s.observe("reset_verify", "invalid")
		return "", ErrInvalidCode
	}

	account, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("reset_verify", "invalid")
			return "", ErrInvalidCode
		}
		s.observe("reset_verify", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.store.TakeResetAttempt(ctx, account.ID, MaxAttempts)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("reset_verify", "invalid")
			return "", ErrInvalidCode
		}
		s.observe("reset_verify", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(account.ID, code))) != 1 {
		s.observe("reset_verify", "invalid")
		return "", ErrInvalidCode
	}

	raw := make([]byte, tokenBytes)
	if _, err = io.ReadFull(s.random, raw); err != nil {
		s.observe("reset_verify", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token := hex.EncodeToString(raw)
	if err = s.store.SetResetToken(ctx, account.ID, stored, hashToken(token)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("reset_verify", "invalid")
			return "", ErrInvalidCode
		}
		s.observe("reset_verify", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.observe("reset_verify", "success")
	return token, nil
}

// ResetPassword устанавливает новый пароль и погашает токен одной транзакцией.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "passwordreset.ResetPassword"

	if token == "" {
		s.observe("reset_password", "invalid")
		return ErrInvalidToken
	}
	if err := auth.CheckPassword(newPassword); err != nil {
		s.observe("reset_password", "invalid")
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.observe("reset_password", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	userID, err := s.store.ResetPassword(ctx, hashToken(token), hashed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("reset_password", "invalid")
			return ErrInvalidToken
		}
		s.observe("reset_password", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset", slog.String("op", op), slog.String("user_id", userID))
	s.observe("reset_password", "success")
	return nil
}

func (s *Service) newCode() (string, error) {
	limit := big.NewInt(1)
	for range CodeLength {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(s.random, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func (s *Service) observe(operation, outcome string) {
	if s.observer != nil {
		s.observer.AuthAttempt(operation, outcome)
	}
}

func isCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// hashCode привязывает код к учётной записи: одинаковые коды разных
// пользователей дают разные хэши.
func hashCode(userID, code string) string {
	sum := sha256.Sum256([]byte(userID + ":" + code))
	return hex.EncodeToString(sum[:])
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

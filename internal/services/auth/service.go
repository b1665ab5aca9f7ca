// Package auth содержит бизнес-логику регистрации, входа и выпуска токенов,
// а также проверку заголовка Authorization для защищённых эндпоинтов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

const (
	// MinPasswordLength минимальная длина пароля в символах.
	MinPasswordLength = 6
	// MaxPasswordBytes предел bcrypt, более длинные пароли отклоняются.
	MaxPasswordBytes = 72
)

// UserStore описывает хранилище учётных записей.
type UserStore interface {
	RegisterUser(ctx context.Context, user models.Account) (*models.Account, error)
	GetUser(ctx context.Context, id string) (*models.Account, error)
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)
	UserExists(ctx context.Context, email string) (bool, error)
	TouchUser(ctx context.Context, id string) (time.Time, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PasswordHasher хэширует и проверяет пароли.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
	Dummy() string
}

// EventPublisher получает события о новых учётных записях.
type EventPublisher interface {
	AccountRegistered(ctx context.Context, account *models.Account) error
}

// Observer получает исход каждой операции для метрик.
type Observer interface {
	AuthAttempt(operation, outcome string)
}

// RegisterInput данные регистрации. ConfirmPassword проверяется, только если передан.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword *string
	Phone           string
	City            string
}

// Session учётная запись и выпущенный для неё токен.
type Session struct {
	Account *models.Account
	Token   string
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher подключает публикацию событий регистрации.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithObserver подключает сбор метрик.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// Service отвечает за регистрацию, вход, обновление токена и смену пароля.
type Service struct {
	users     UserStore
	hasher    PasswordHasher
	tokens    jwt.Maker
	log       *slog.Logger
	validate  *validator.Validate
	publisher EventPublisher
	observer  Observer
}

// NewService создает новый экземпляр Service.
func NewService(users UserStore, hasher PasswordHasher, tokens jwt.Maker, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создаёт учётную запись с ролью USER и сразу выпускает для неё токен.
//
// Входные данные проверяются до обращения к хранилищу. Занятый email определяется
// предварительной проверкой, а при гонке двух регистраций ограничением уникальности
// в базе; в обоих случаях возвращается ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "auth.Register"
	log := s.log.With(slog.String("op", op))

	email := models.NormalizeEmail(in.Email)
	if err := s.checkEmail(email); err != nil {
		s.observe("register", "invalid")
		return nil, err
	}
	if err := CheckPassword(in.Password); err != nil {
		s.observe("register", "invalid")
		return nil, err
	}
	if in.ConfirmPassword != nil && *in.ConfirmPassword != in.Password {
		s.observe("register", "invalid")
		return nil, ErrPasswordMismatch
	}

	exists, err := s.users.UserExists(ctx, email)
	if err != nil {
		s.observe("register", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		s.observe("register", "duplicate")
		return nil, ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.observe("register", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	account := models.Account{
		Email:        email,
		PasswordHash: hashed,
		Name:         defaultString(in.Name, localPart(email)),
		Phone:        defaultString(in.Phone, models.DefaultPhone),
		City:         defaultString(in.City, models.DefaultCity),
		Role:         models.RoleUser,
		Balance:      models.DefaultBalance,
		IsActive:     true,
	}
	created, err := s.users.RegisterUser(ctx, account)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			s.observe("register", "duplicate")
			return nil, ErrDuplicateEmail
		}
		s.observe("register", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(created.Email, created.Role.String(), created.ID)
	if err != nil {
		s.observe("register", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.publisher != nil {
		if err := s.publisher.AccountRegistered(ctx, created); err != nil {
			log.Warn("failed to publish account registered event", sl.Err(err))
		}
	}

	log.Info("account registered", slog.String("user_id", created.ID), sl.Email(created.Email))
	s.observe("register", "success")
	return &Session{Account: created, Token: token}, nil
}

// Login проверяет пароль и выпускает токен.
//
// Пароль проверяется всегда, в том числе для несуществующего email (против
// фиктивного хэша), чтобы время ответа не выдавало наличие учётной записи.
// Неактивность сообщается только при верном пароле.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.Login"
	log := s.log.With(slog.String("op", op))

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		s.observe("login", "invalid")
		return nil, invalid("email and password are required")
	}

	account, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.Verify(password, s.hasher.Dummy())
			s.observe("login", "not_found")
			return nil, ErrAccountNotFound
		}
		s.observe("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.observe("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		s.observe("login", "inactive")
		return nil, ErrAccountInactive
	}

	updatedAt, err := s.users.TouchUser(ctx, account.ID)
	if err != nil {
		s.observe("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	account.UpdatedAt = updatedAt

	token, err := s.tokens.GenerateToken(account.Email, account.Role.String(), account.ID)
	if err != nil {
		s.observe("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("user_id", account.ID))
	s.observe("login", "success")
	return &Session{Account: account, Token: token}, nil
}

// Refresh выпускает новый токен с теми же email, ролью и id, что у действующего oldToken.
// Учётная запись должна существовать и быть активной.
func (s *Service) Refresh(ctx context.Context, oldToken string) (string, error) {
	const op = "auth.Refresh"

	claims, err := s.tokens.ParseToken(oldToken)
	if err != nil {
		s.observe("refresh", "rejected")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	account, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("refresh", "not_found")
			return "", ErrAccountNotFound
		}
		s.observe("refresh", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !account.IsActive {
		s.observe("refresh", "inactive")
		return "", ErrAccountInactive
	}

	token, err := s.tokens.GenerateToken(claims.Email(), claims.Role, claims.UserID)
	if err != nil {
		s.observe("refresh", "error")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.observe("refresh", "success")
	return token, nil
}

// ChangePassword меняет пароль после проверки текущего. Порядок проверок
// как у Login: сначала текущий пароль, затем активность, затем новый пароль.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	const op = "auth.ChangePassword"
	log := s.log.With(slog.String("op", op))

	account, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("change_password", "not_found")
			return ErrAccountNotFound
		}
		s.observe("change_password", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	if !s.hasher.Verify(current, account.PasswordHash) {
		s.observe("change_password", "invalid_credentials")
		return ErrInvalidCredentials
	}
	if !account.IsActive {
		s.observe("change_password", "inactive")
		return ErrAccountInactive
	}
	if err = CheckPassword(next); err != nil {
		s.observe("change_password", "invalid")
		return err
	}
	if current == next {
		s.observe("change_password", "invalid")
		return ErrSamePassword
	}

	hashed, err := s.hasher.Hash(next)
	if err != nil {
		s.observe("change_password", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.UpdatePassword(ctx, account.ID, hashed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observe("change_password", "not_found")
			return ErrAccountNotFound
		}
		s.observe("change_password", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password changed", slog.String("user_id", userID))
	s.observe("change_password", "success")
	return nil
}

// Logout только подтверждает выход: токены не хранятся на сервере, поэтому
// токен остаётся действительным до истечения срока, а учётная запись не меняется.
func (s *Service) Logout(_ context.Context, identity *models.Identity) error {
	const op = "auth.Logout"
	if identity != nil {
		s.log.Info("user logged out", slog.String("op", op), slog.String("user_id", identity.UserID))
	}
	s.observe("logout", "success")
	return nil
}

func (s *Service) checkEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return invalid("email is not valid")
	}
	return nil
}

// CheckPassword проверяет длину пароля: не короче MinPasswordLength символов
// и не длиннее MaxPasswordBytes байт.
func CheckPassword(password string) error {
	if password == "" {
		return invalid("password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password must not exceed 72 bytes")
	}
	return nil
}

func (s *Service) observe(operation, outcome string) {
	if s.observer != nil {
		s.observer.AuthAttempt(operation, outcome)
	}
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

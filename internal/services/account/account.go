// Package account содержит бизнес-логику профиля пользователя: чтение,
// изменение, деактивацию и удаление собственной учётной записи.
// Email, роль и пароль здесь не меняются.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// ErrNotFound учётная запись не найдена.
var ErrNotFound = errors.New("account not found")

// Repository определяет методы работы с профилем в хранилище.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Account, error)
}

// Lifecycle меняет активность и удаляет учётные записи. Реализация
// отвечает за согласованность кэша личностей.
type Lifecycle interface {
	SetActive(ctx context.Context, id string, active bool) error
	DeleteUser(ctx context.Context, id string) error
}

// ProfileUpdate изменяемые поля профиля. nil означает «не менять».
type ProfileUpdate = models.ProfileUpdate

// Service реализует операции с собственной учётной записью.
type Service struct {
	repo      Repository
	lifecycle Lifecycle
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, lifecycle Lifecycle, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		lifecycle: lifecycle,
		log:       log,
	}
}

// Profile возвращает учётную запись пользователя.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Account, error) {
	const op = "account.Profile"
	acc, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// UpdateProfile сохраняет переданные поля одним обновлением в хранилище.
// Пустое имя не меняет текущее.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.Account, error) {
	const op = "account.UpdateProfile"

	upd = ProfileUpdate{
		Name:        trimmed(upd.Name),
		Phone:       trimmed(upd.Phone),
		City:        trimmed(upd.City),
		Address:     trimmed(upd.Address),
		AvatarURL:   trimmed(upd.AvatarURL),
		CompanyName: trimmed(upd.CompanyName),
		BIN:         trimmed(upd.BIN),
	}
	if upd.Name != nil && *upd.Name == "" {
		upd.Name = nil
	}

	acc, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("op", op), slog.String("user_id", userID))
	return acc, nil
}

// Deactivate выключает учётную запись. Выпущенные токены перестают
// приниматься, вход возвращает ErrAccountInactive.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	const op = "account.Deactivate"
	if err := s.lifecycle.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account deactivated", slog.String("op", op), slog.String("user_id", userID))
	return nil
}

// Delete удаляет учётную запись вместе с картами, адресами и заказами.
func (s *Service) Delete(ctx context.Context, userID string) error {
	const op = "account.Delete"
	if err := s.lifecycle.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account deleted", slog.String("op", op), slog.String("user_id", userID))
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// Package admin содержит операции администратора над учётными записями:
// постраничный список с фильтрами, просмотр, изменение, удаление и сводку по ролям.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// Размер страницы списка.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrSelfModification администратор пытается удалить, отключить или
	// понизить собственную учётную запись.
	ErrSelfModification = errors.New("administrators cannot remove, deactivate or demote themselves")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmptyUpdate      = errors.New("nothing to update")
)

// Store чтение учётных записей.
type Store interface {
	ListUsers(ctx context.Context, f models.UserFilter) ([]*models.Account, int, error)
	GetUser(ctx context.Context, id string) (*models.Account, error)
	RoleStats(ctx context.Context) ([]models.RoleStat, error)
}

// Lifecycle изменения, затрагивающие роль, активность и существование
// учётной записи. Реализация отвечает за согласованность кэша личностей.
type Lifecycle interface {
	AdminUpdateUser(ctx context.Context, id string, upd models.AdminUpdate) (*models.Account, error)
	DeleteUser(ctx context.Context, id string) error
}

// Page страница списка учётных записей.
type Page struct {
	Users  []*models.Account
	Total  int
	Limit  int
	Offset int
}

// Stats сводка по учётным записям.
type Stats struct {
	Total  int
	Active int
	Roles  []models.RoleStat
}

// Service реализует операции администратора.
type Service struct {
	store     Store
	lifecycle Lifecycle
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(store Store, lifecycle Lifecycle, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		lifecycle: lifecycle,
		log:       log,
	}
}

// ListUsers возвращает страницу учётных записей. Лимит приводится к
// диапазону 1..MaxLimit, отрицательное смещение к нулю.
func (s *Service) ListUsers(ctx context.Context, f models.UserFilter) (*Page, error) {
	const op = "admin.ListUsers"

	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	f.Limit = min(f.Limit, MaxLimit)
	f.Offset = max(f.Offset, 0)
	f.Search = strings.TrimSpace(f.Search)

	users, total, err := s.store.ListUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Page{Users: users, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// GetUser возвращает учётную запись по id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.Account, error) {
	const op = "admin.GetUser"
	acc, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// UpdateUser меняет имя, телефон, город, роль или активность учётной записи.
// actorID id администратора, выполняющего запрос.
func (s *Service) UpdateUser(ctx context.Context, actorID, id string, upd models.AdminUpdate) (*models.Account, error) {
	const op = "admin.UpdateUser"
	log := s.log.With(slog.String("op", op), slog.String("actor_id", actorID), slog.String("user_id", id))

	upd.Name = trimmed(upd.Name)
	upd.Phone = trimmed(upd.Phone)
	upd.City = trimmed(upd.City)
	if upd.Role != nil {
		role, err := models.ParseRole(string(*upd.Role))
		if err != nil {
			return nil, ErrInvalidRole
		}
		upd.Role = &role
	}
	if upd.Name == nil && upd.Phone == nil && upd.City == nil && upd.Role == nil && upd.IsActive == nil {
		return nil, ErrEmptyUpdate
	}
	if actorID == id && ((upd.Role != nil && *upd.Role != models.RoleAdmin) || (upd.IsActive != nil && !*upd.IsActive)) {
		return nil, ErrSelfModification
	}

	acc, err := s.lifecycle.AdminUpdateUser(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user updated by admin", slog.String("role", acc.Role.String()), slog.Bool("is_active", acc.IsActive))
	return acc, nil
}

// DeleteUser удаляет учётную запись вместе с её ресурсами.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	const op = "admin.DeleteUser"

	if actorID == id {
		return ErrSelfModification
	}
	if err := s.lifecycle.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted by admin", slog.String("op", op), slog.String("actor_id", actorID), slog.String("user_id", id))
	return nil
}

// Stats возвращает число учётных записей всего, активных и по ролям.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	const op = "admin.Stats"
	roles, err := s.store.RoleStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	st := &Stats{Roles: roles}
	for _, r := range roles {
		st.Total += r.Total
		st.Active += r.Active
	}
	return st, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

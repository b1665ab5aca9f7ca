package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// IdentityStore хранилище учётных записей, которое оборачивает Accounts.
type IdentityStore interface {
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	SetActive(ctx context.Context, id string, active bool) error
	AdminUpdateUser(ctx context.Context, id string, upd models.AdminUpdate) (*models.Account, error)
	DeleteUser(ctx context.Context, id string) error
}

// Accounts кэширует личность (id, email, роль, активность), по которой
// проверяется каждый защищённый запрос. Хэш пароля и профиль в кэш не попадают.
//
// Промах заполняется через SETNX, а изменения роли, активности и удаление
// записывают в кэш свежее состояние поверх старого, поэтому чтение, начатое
// до изменения, не перезапишет результат изменения. Удалённая учётная запись
// хранится как метка до истечения ttl.
type Accounts struct {
	store IdentityStore
	cache *Cache
	ttl   time.Duration
	log   *slog.Logger
}

type cachedIdentity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
	Deleted  bool   `json:"deleted,omitempty"`
}

func newCachedIdentity(identity *models.Identity) cachedIdentity {
	return cachedIdentity{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Role:     identity.Role.String(),
		IsActive: identity.IsActive,
	}
}

// NewAccounts создает новый экземпляр Accounts.
func NewAccounts(store IdentityStore, cache *Cache, ttl time.Duration, log *slog.Logger) *Accounts {
	return &Accounts{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func identityKey(id string) string {
	return "identity:" + id
}

// GetIdentity читает личность из кэша, при промахе из хранилища.
// Ошибки redis не прерывают запрос.
func (a *Accounts) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	const op = "cache.Accounts.GetIdentity"
	log := a.log.With(slog.String("op", op))

	var cached cachedIdentity
	found, err := a.cache.Get(ctx, identityKey(id), &cached)
	if err != nil {
		log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		if cached.Deleted {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return &models.Identity{
			UserID:   cached.UserID,
			Email:    cached.Email,
			Role:     models.Role(cached.Role),
			IsActive: cached.IsActive,
		}, nil
	}

	identity, err := a.store.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err = a.cache.SetNX(ctx, identityKey(id), newCachedIdentity(identity), a.ttl); err != nil {
		log.Warn("cache write failed", sl.Err(err))
	}
	return identity, nil
}

// SetActive меняет активность и записывает новое состояние в кэш.
func (a *Accounts) SetActive(ctx context.Context, id string, active bool) error {
	err := a.store.SetActive(ctx, id, active)
	a.refresh(ctx, id)
	return err
}

// AdminUpdateUser применяет изменения администратора и записывает новое состояние в кэш.
func (a *Accounts) AdminUpdateUser(ctx context.Context, id string, upd models.AdminUpdate) (*models.Account, error) {
	account, err := a.store.AdminUpdateUser(ctx, id, upd)
	a.refresh(ctx, id)
	return account, err
}

// DeleteUser удаляет учётную запись и оставляет в кэше метку удаления.
func (a *Accounts) DeleteUser(ctx context.Context, id string) error {
	err := a.store.DeleteUser(ctx, id)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		a.put(ctx, id, cachedIdentity{UserID: id, Deleted: true})
	} else {
		a.refresh(ctx, id)
	}
	return err
}

func (a *Accounts) refresh(ctx context.Context, id string) {
	identity, err := a.store.GetIdentity(ctx, id)
	switch {
	case err == nil:
		a.put(ctx, id, newCachedIdentity(identity))
	case errors.Is(err, storage.ErrNotFound):
		a.put(ctx, id, cachedIdentity{UserID: id, Deleted: true})
	default:
		a.log.Warn("cache refresh failed", slog.String("op", "cache.Accounts.refresh"), sl.Err(err))
		a.drop(ctx, id)
	}
}

func (a *Accounts) put(ctx context.Context, id string, v cachedIdentity) {
	if err := a.cache.Set(ctx, identityKey(id), v, a.ttl); err != nil {
		a.log.Warn("cache write failed", slog.String("op", "cache.Accounts.put"), sl.Err(err))
		a.drop(ctx, id)
	}
}

func (a *Accounts) drop(ctx context.Context, id string) {
	if err := a.cache.Invalidate(ctx, identityKey(id)); err != nil {
		a.log.Warn("cache invalidate failed", slog.String("op", "cache.Accounts.drop"), sl.Err(err))
	}
}

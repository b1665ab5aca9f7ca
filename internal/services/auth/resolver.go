package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// BearerPrefix схема заголовка Authorization, регистр и пробел значимы.
const BearerPrefix = "Bearer "

// IdentityReader ищет по id поля учётной записи, нужные для проверки токена.
type IdentityReader interface {
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
}

// Resolver превращает заголовок Authorization в подтверждённую личность.
type Resolver struct {
	tokens jwt.Maker
	users  IdentityReader
}

// NewResolver создает новый экземпляр Resolver.
func NewResolver(tokens jwt.Maker, users IdentityReader) *Resolver {
	return &Resolver{
		tokens: tokens,
		users:  users,
	}
}

// Resolve проверяет токен из заголовка и наличие активной учётной записи.
// Email и роль берутся из хранилища, а не из токена.
func (r *Resolver) Resolve(ctx context.Context, header string) (*models.Identity, error) {
	const op = "auth.Resolve"

	token, ok := BearerToken(header)
	if !ok {
		return nil, ErrMissingToken
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identity, err := r.users.GetIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !identity.IsActive {
		return nil, ErrAccountInactive
	}
	return identity, nil
}

// BearerToken достаёт токен из значения заголовка Authorization.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

// Package middlewarectx содержит HTTP middleware для проверки личности и
// ограничения частоты запросов.
//
// Authenticate передаёт заголовок Authorization в IdentityResolver и при успехе
// кладёт подтверждённую личность в контекст запроса. При любом отказе
// отвечает 401 Unauthorized с JSON {success:false, message}. RequireRole
// дополнительно ограничивает доступ по роли.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityResolver проверяет значение заголовка Authorization.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (*models.Identity, error)
}

// Authenticate возвращает middleware, пропускающий только запросы с действующим токеном.
func Authenticate(resolver IdentityResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole пропускает только личности с одной из ролей roles и
// ставится после Authenticate. Остальным отвечает 403 Forbidden.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			identity, ok := IdentityFrom(r.Context())
			if !ok {
				response.Fail(w, r, log.With(slog.String("op", op)), auth.ErrMissingToken)
				return
			}
			if !slices.Contains(roles, identity.Role) {
				log := log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("user_id", identity.UserID),
				)
				response.Fail(w, r, log, auth.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity возвращает копию ctx с личностью пользователя.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom достаёт личность, сохранённую Authenticate.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

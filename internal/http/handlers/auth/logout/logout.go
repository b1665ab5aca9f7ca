// Package logout содержит обработчик POST /api/auth/logout.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
)

// Service подтверждает выход.
type Service interface {
	Logout(ctx context.Context, identity *models.Identity) error
}

// Handler обработчик выхода. Отвечает 200 всегда; личность, если заголовок
// её подтверждает, передаётся сервису только для журнала.
type Handler struct {
	log      *slog.Logger
	service  Service
	resolver middlewarectx.IdentityResolver
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, resolver middlewarectx.IdentityResolver) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		resolver: resolver,
	}
}

// ServeHTTP подтверждает выход.
//
// @Summary      Выход
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /api/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var identity *models.Identity
	if header := r.Header.Get("Authorization"); header != "" && h.resolver != nil {
		if id, err := h.resolver.Resolve(r.Context(), header); err == nil {
			identity = id
		}
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		log.Warn("logout failed", sl.Err(err))
	}

	render.JSON(w, r, response.OK("logged out"))
}

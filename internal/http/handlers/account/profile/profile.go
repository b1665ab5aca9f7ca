// Package profile содержит обработчик GET /api/account/user/me.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service читает профиль пользователя.
type Service interface {
	Profile(ctx context.Context, userID string) (*models.Account, error)
}

// Handler обработчик чтения профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает профиль текущего пользователя.
//
// @Summary      Профиль
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.UserResponse
// @Failure      401 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/account/user/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	acc, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.UserResponse{
		Success: true,
		User:    response.NewUser(acc),
	})
}

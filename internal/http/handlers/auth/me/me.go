// Package me содержит обработчик GET /api/auth/me.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Handler отдаёт личность, подтверждённую middlewarectx.Authenticate.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP возвращает текущего пользователя.
//
// @Summary      Текущий пользователь
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.MeResponse
// @Failure      401 {object} response.Response
// @Router       /api/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	render.JSON(w, r, response.MeResponse{
		Success: true,
		User: response.IdentityUser{
			ID:       identity.UserID,
			Email:    identity.Email,
			Role:     identity.Role.String(),
			IsActive: identity.IsActive,
		},
	})
}

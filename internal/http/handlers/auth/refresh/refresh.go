// Package refresh содержит обработчик POST /api/auth/refresh.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service перевыпускает токен.
type Service interface {
	Refresh(ctx context.Context, oldToken string) (string, error)
}

// Handler обработчик обновления токена.
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

// ServeHTTP выдаёт новый токен взамен действующего.
//
// @Summary      Обновление токена
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.TokenResponse
// @Failure      401 {object} response.Response
// @Failure      500 {object} response.Response
// @Router       /api/auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	fresh, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.TokenResponse{
		Success: true,
		Token:   fresh,
	})
}

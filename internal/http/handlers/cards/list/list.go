// Package list содержит обработчик GET /api/cards.
package list

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

// Service возвращает карты пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Card, error)
}

// Handler обработчик списка карт.
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

// ServeHTTP возвращает карты текущего пользователя, карта по умолчанию первой.
//
// @Summary      Список карт
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.CardsResponse
// @Failure      401 {object} response.Response
// @Router       /api/cards [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	res, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("list cards", slog.Int("count", len(res)))
	render.JSON(w, r, response.NewCards(res))
}

// Package remove содержит обработчик DELETE /api/cards/{id}.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service удаляет карту пользователя.
type Service interface {
	Remove(ctx context.Context, userID string, id int64) error
}

// Handler обработчик удаления карты.
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

// ServeHTTP удаляет карту. Чужая карта неотличима от несуществующей.
//
// @Summary      Удаление карты
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID карты"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/cards/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid id format", sl.Err(err))
		response.BadRequest(w, r, "invalid id")
		return
	}

	if err = h.service.Remove(r.Context(), identity.UserID, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("card removed", slog.Int64("card_id", id))
	render.JSON(w, r, response.OK("card removed"))
}

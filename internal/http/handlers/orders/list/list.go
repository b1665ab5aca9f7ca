// Package list содержит обработчик GET /api/orders.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service возвращает заказы пользователя.
type Service interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error)
}

// Handler обработчик списка заказов.
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

// ServeHTTP возвращает страницу заказов текущего пользователя.
//
// @Summary      Список заказов
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Размер страницы"
// @Param        offset query int false "Смещение"
// @Success      200 {object} response.OrdersResponse
// @Failure      401 {object} response.Response
// @Router       /api/orders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.orders.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.service.List(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("list orders", slog.Int("count", len(res)))
	render.JSON(w, r, response.NewOrders(res))
}

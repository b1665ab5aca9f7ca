// Package create содержит обработчик POST /api/orders.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/services/orders"
)

// Service оформляет заказ.
type Service interface {
	Create(ctx context.Context, userID string, in orders.OrderInput) (*models.Order, error)
}

// Item позиция заказа во входных данных.
type Item struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Request входные данные заказа.
type Request struct {
	RestaurantName  string `json:"restaurantName" validate:"required,max=255"`
	Items           []Item `json:"items" validate:"required,dive"`
	DeliveryAddress string `json:"deliveryAddress" validate:"required,max=255"`
}

// Handler обработчик оформления заказа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP оформляет заказ; сумма считается на сервере.
//
// @Summary      Оформление заказа
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Request true "Заказ"
// @Success      201 {object} response.OrderResponse
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.orders.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	order, err := h.service.Create(r.Context(), identity.UserID, orders.OrderInput{
		RestaurantName:  req.RestaurantName,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OrderResponse{
		Success: true,
		Order:   response.NewOrder(order),
	})
}

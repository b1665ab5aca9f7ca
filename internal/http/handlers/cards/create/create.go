// Package create содержит обработчик POST /api/cards.
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
	"github.com/magabrotheeeer/foodshare/internal/services/cards"
)

// Service сохраняет карту.
type Service interface {
	Add(ctx context.Context, userID string, in cards.CardInput) (*models.Card, error)
}

// Request входные данные карты.
type Request struct {
	CardNumber     string `json:"cardNumber" validate:"required"`
	CardHolderName string `json:"cardHolderName" validate:"required,max=100"`
	ExpiryMonth    string `json:"expiryMonth" validate:"required,numeric,max=2"`
	ExpiryYear     string `json:"expiryYear" validate:"required,numeric,max=4"`
	CardType       string `json:"cardType,omitempty" validate:"max=20"`
	IsDefault      bool   `json:"isDefault,omitempty"`
}

// Handler обработчик добавления карты.
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

// ServeHTTP сохраняет карту текущего пользователя. Номер целиком не хранится.
//
// @Summary      Добавление карты
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Request true "Данные карты"
// @Success      201 {object} response.CardResponse
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/cards [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.create"

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

	card, err := h.service.Add(r.Context(), identity.UserID, cards.CardInput{
		Number:      req.CardNumber,
		HolderName:  req.CardHolderName,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CardType:    req.CardType,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.CardResponse{
		Success: true,
		Card:    response.NewCard(card),
	})
}

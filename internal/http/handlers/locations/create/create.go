// Package create содержит обработчик POST /api/locations.
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
	"github.com/magabrotheeeer/foodshare/internal/services/locations"
)

// Service сохраняет адрес.
type Service interface {
	Add(ctx context.Context, userID string, in locations.LocationInput) (*models.Location, error)
}

// Request входные данные адреса.
type Request struct {
	Label     string   `json:"label,omitempty" validate:"max=50"`
	Address   string   `json:"address" validate:"required,max=255"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Handler обработчик добавления адреса.
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

// ServeHTTP сохраняет адрес и делает его текущим адресом пользователя.
//
// @Summary      Добавление адреса
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Request true "Адрес и координаты"
// @Success      201 {object} response.LocationResponse
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/locations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.locations.create"

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
	if req.Latitude == nil || req.Longitude == nil {
		response.BadRequest(w, r, "latitude and longitude are required")
		return
	}

	loc, err := h.service.Add(r.Context(), identity.UserID, locations.LocationInput{
		Label:     req.Label,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.LocationResponse{
		Success:  true,
		Location: response.NewLocation(loc),
	})
}

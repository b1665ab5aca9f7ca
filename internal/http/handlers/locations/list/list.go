// Package list содержит обработчик GET /api/locations.
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

// Service возвращает адреса пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Location, error)
}

// Handler обработчик списка адресов.
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

// ServeHTTP возвращает сохранённые адреса текущего пользователя.
//
// @Summary      Список адресов
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.LocationsResponse
// @Failure      401 {object} response.Response
// @Router       /api/locations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.locations.list"

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

	render.JSON(w, r, response.NewLocations(res))
}

// Package getuser содержит обработчик GET /api/admin/users/{id}.
package getuser

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/models"
)

// Service возвращает учётную запись по id.
type Service interface {
	GetUser(ctx context.Context, id string) (*models.Account, error)
}

// Handler обработчик просмотра учётной записи.
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

// ServeHTTP возвращает учётную запись.
//
// @Summary      Пользователь по id
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID пользователя"
// @Success      200 {object} response.UserResponse
// @Failure      403 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.getuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	acc, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.UserResponse{
		Success: true,
		User:    response.NewUser(acc),
	})
}

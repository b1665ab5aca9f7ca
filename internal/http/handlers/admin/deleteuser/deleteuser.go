// Package deleteuser содержит обработчик DELETE /api/admin/users/{id}.
package deleteuser

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service удаляет учётную запись от имени администратора.
type Service interface {
	DeleteUser(ctx context.Context, actorID, id string) error
}

// Handler обработчик удаления учётной записи администратором.
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

// ServeHTTP удаляет учётную запись.
//
// @Summary      Удаление пользователя
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID пользователя"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response
// @Failure      403 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/admin/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deleteuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	if err := h.service.DeleteUser(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.OK("user deleted"))
}

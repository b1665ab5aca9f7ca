// Package remove содержит обработчик DELETE /api/account/user/me.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service удаляет учётную запись.
type Service interface {
	Delete(ctx context.Context, userID string) error
}

// Handler обработчик удаления собственной учётной записи.
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

// ServeHTTP удаляет учётную запись текущего пользователя вместе с картами,
// адресами и заказами.
//
// @Summary      Удаление учётной записи
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/account/user/me [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		response.Fail(w, r, log, auth.ErrMissingToken)
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("account deleted", slog.String("user_id", identity.UserID))
	render.JSON(w, r, response.OK("account deleted"))
}

// Package stats содержит обработчик GET /api/admin/stats/system.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
)

// Service считает учётные записи.
type Service interface {
	Stats(ctx context.Context) (*admin.Stats, error)
}

// Handler обработчик сводки.
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

// ServeHTTP возвращает число учётных записей всего, активных и по ролям.
//
// @Summary      Сводка по пользователям
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StatsResponse
// @Failure      403 {object} response.Response
// @Router       /api/admin/stats/system [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	st, err := h.service.Stats(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.NewStats(st.Total, st.Active, st.Roles))
}

// Package listusers содержит обработчик GET /api/admin/users.
package listusers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
)

// Service возвращает страницу учётных записей.
type Service interface {
	ListUsers(ctx context.Context, f models.UserFilter) (*admin.Page, error)
}

// Handler обработчик списка учётных записей.
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

// ServeHTTP возвращает учётные записи с фильтрами и пагинацией.
//
// @Summary      Список пользователей
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search   query string false "Подстрока имени, email, телефона или заведения"
// @Param        role     query string false "USER, ADMIN или BUSINESS"
// @Param        isActive query bool   false "Только активные или только отключённые"
// @Param        sortBy   query string false "name, email, role, created_at, updated_at"
// @Param        order    query string false "asc или desc"
// @Param        limit    query int    false "Размер страницы, до 100"
// @Param        offset   query int    false "Смещение"
// @Success      200 {object} response.UsersResponse
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Failure      403 {object} response.Response
// @Router       /api/admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listusers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	f, msg := parseFilter(r)
	if msg != "" {
		log.Info("invalid filter", slog.String("reason", msg))
		response.BadRequest(w, r, msg)
		return
	}

	page, err := h.service.ListUsers(r.Context(), f)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.NewUsers(page.Users, page.Total, page.Limit, page.Offset))
}

// parseFilter разбирает параметры запроса. Непустое второе значение
// сообщение об ошибке для клиента.
func parseFilter(r *http.Request) (models.UserFilter, string) {
	q := r.URL.Query()
	f := models.UserFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
	}

	if v := q.Get("role"); v != "" {
		role, err := models.ParseRole(v)
		if err != nil {
			return f, "invalid role"
		}
		f.Role = role
	}
	if v := q.Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return f, "invalid isActive"
		}
		f.IsActive = &active
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		f.Desc = true
	default:
		return f, "invalid order"
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "invalid limit"
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "invalid offset"
		}
		f.Offset = n
	}
	return f, ""
}

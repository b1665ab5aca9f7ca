// Package updateuser содержит обработчик PATCH /api/admin/users/{id}.
package updateuser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service меняет учётную запись от имени администратора.
type Service interface {
	UpdateUser(ctx context.Context, actorID, id string, upd models.AdminUpdate) (*models.Account, error)
}

// Request изменяемые поля. Отсутствующее поле не меняется.
type Request struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Role     *string `json:"role,omitempty" example:"BUSINESS"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Handler обработчик изменения учётной записи администратором.
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

// ServeHTTP меняет имя, телефон, город, роль или активность учётной записи.
// Свою учётную запись администратор не может отключить или понизить.
//
// @Summary      Изменение пользователя
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string  true "ID пользователя"
// @Param        request body Request true "Поля"
// @Success      200 {object} response.UserResponse
// @Failure      400 {object} response.Response
// @Failure      403 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/admin/users/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updateuser"

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

	upd := models.AdminUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		City:     req.City,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		upd.Role = &role
	}

	acc, err := h.service.UpdateUser(r.Context(), identity.UserID, chi.URLParam(r, "id"), upd)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.UserResponse{
		Success: true,
		User:    response.NewUser(acc),
	})
}

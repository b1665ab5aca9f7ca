// Package update содержит обработчик PUT /api/account/user/me.
package update

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
	"github.com/magabrotheeeer/foodshare/internal/services/account"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service обновляет профиль пользователя.
type Service interface {
	UpdateProfile(ctx context.Context, userID string, upd account.ProfileUpdate) (*models.Account, error)
}

// Request изменяемые поля профиля. Отсутствующее поле не меняется.
type Request struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=255"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=255"`
	BIN         *string `json:"bin,omitempty" validate:"omitempty,numeric,len=12"`
}

// Handler обработчик изменения профиля.
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

// ServeHTTP изменяет профиль текущего пользователя.
//
// @Summary      Изменение профиля
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Request true "Поля профиля"
// @Success      200 {object} response.UserResponse
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/account/user/me [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.update"

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

	acc, err := h.service.UpdateProfile(r.Context(), identity.UserID, account.ProfileUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		City:        req.City,
		Address:     req.Address,
		AvatarURL:   req.AvatarURL,
		CompanyName: req.CompanyName,
		BIN:         req.BIN,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.UserResponse{
		Success: true,
		User:    response.NewUser(acc),
	})
}

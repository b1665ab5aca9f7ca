// Package forgotpassword содержит обработчик POST /api/auth/forgot-password.
package forgotpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
)

// Service выпускает код восстановления.
type Service interface {
	RequestCode(ctx context.Context, email string) error
}

// Request email учётной записи.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler обработчик запроса кода восстановления.
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

// ServeHTTP отправляет код восстановления на email. Ответ одинаков для
// существующих и неизвестных адресов.
//
// @Summary      Запрос кода восстановления пароля
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body Request true "Email"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response
// @Failure      429 {object} response.Response
// @Failure      503 {object} response.Response
// @Router       /api/auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	if err := h.service.RequestCode(r.Context(), req.Email); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.OK("if the account exists, a reset code has been sent"))
}

// Package verifyresetcode содержит обработчик POST /api/auth/verify-reset-code.
package verifyresetcode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
)

// Service обменивает код восстановления на токен сброса.
type Service interface {
	VerifyCode(ctx context.Context, email, code string) (string, error)
}

// Request email и код из письма.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

// Handler обработчик проверки кода восстановления.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	ttl      time.Duration
}

// New создает новый экземпляр Handler. ttl срок жизни выдаваемого токена,
// сообщается клиенту в expiresIn.
func New(log *slog.Logger, service Service, ttl time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		ttl:      ttl,
	}
}

// ServeHTTP проверяет код и выдаёт одноразовый токен сброса пароля.
//
// @Summary      Проверка кода восстановления
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body Request true "Email и код"
// @Success      200 {object} response.ResetTokenResponse
// @Failure      400 {object} response.Response
// @Failure      429 {object} response.Response
// @Router       /api/auth/verify-reset-code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyresetcode"

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

	token, err := h.service.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.ResetTokenResponse{
		Success:    true,
		ResetToken: token,
		ExpiresIn:  int(h.ttl.Seconds()),
	})
}

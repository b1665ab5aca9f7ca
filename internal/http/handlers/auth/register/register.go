// Package register содержит обработчик POST /api/auth/register.
package register

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/http/response"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Request входные данные для регистрации.
type Request struct {
	Name            string  `json:"name" validate:"max=100"`
	Email           string  `json:"email" validate:"required"`
	Password        string  `json:"password" validate:"required"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
	Phone           string  `json:"phone,omitempty" validate:"max=32"`
	City            string  `json:"city,omitempty" validate:"max=100"`
}

// Handler обработчик регистрации.
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

// ServeHTTP регистрирует пользователя и сразу возвращает токен.
//
// @Summary      Регистрация
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body Request true "Данные пользователя"
// @Success      200 {object} response.AuthResponse
// @Failure      400 {object} response.Response
// @Failure      500 {object} response.Response
// @Router       /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	log.Info("request body decoded", sl.Email(req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		City:            req.City,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.AuthResponse{
		Success: true,
		Token:   session.Token,
		User:    response.NewUser(session.Account),
	})
}

// Package response содержит типы и функции для формирования унифицированных
// JSON‑ответов HTTP‑обработчиков. Каждый ответ содержит поле success и либо
// запрошенные данные, либо сообщение message.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodshare/internal/services/account"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/services/cards"
	"github.com/magabrotheeeer/foodshare/internal/services/locations"
	"github.com/magabrotheeeer/foodshare/internal/services/orders"
	"github.com/magabrotheeeer/foodshare/internal/services/passwordreset"
)

// Response описывает ответ без данных.
type Response struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message,omitempty" example:"invalid request body"`
}

// MsgInternal сообщение для непредвиденных ошибок; подробности остаются в логах.
const MsgInternal = "internal error"

// OK возвращает успешный Response с сообщением.
func OK(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Success: false,
		Message: msg,
	}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "gt", "gte", "lte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is out of range", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}

type errorMapping struct {
	target error
	status int
}

// Ошибки с пояснением для клиента: сообщение берётся из самой ошибки.
var badRequest = []error{
	auth.ErrValidation,
	auth.ErrWeakPassword,
	auth.ErrPasswordMismatch,
	auth.ErrDuplicateEmail,
	auth.ErrSamePassword,
	cards.ErrInvalidCard,
	cards.ErrCardExpired,
	locations.ErrInvalidLocation,
	orders.ErrInvalidOrder,
	passwordreset.ErrInvalidCode,
	passwordreset.ErrInvalidToken,
	admin.ErrSelfModification,
	admin.ErrInvalidRole,
	admin.ErrEmptyUpdate,
}

// Отказы в доступе и отсутствующие ресурсы: сообщение берётся из сентинела,
// чтобы не выдавать обёртки с внутренними именами операций.
var rejections = []errorMapping{
	{auth.ErrMissingToken, http.StatusUnauthorized},
	{auth.ErrInvalidSignature, http.StatusUnauthorized},
	{auth.ErrExpired, http.StatusUnauthorized},
	{auth.ErrMalformed, http.StatusUnauthorized},
	{auth.ErrAccountNotFound, http.StatusUnauthorized},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrAccountInactive, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{account.ErrNotFound, http.StatusNotFound},
	{cards.ErrNotFound, http.StatusNotFound},
	{admin.ErrNotFound, http.StatusNotFound},
	{passwordreset.ErrUnavailable, http.StatusServiceUnavailable},
}

// FromError сопоставляет ошибку сервиса с HTTP-статусом и телом ответа.
// Всё, что не распознано, считается сбоем и отдаётся как 500 без подробностей.
func FromError(err error) (int, Response) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, Error(err.Error())
		}
	}
	for _, m := range rejections {
		if errors.Is(err, m.target) {
			return m.status, Error(m.target.Error())
		}
	}
	return http.StatusInternalServerError, Error(MsgInternal)
}

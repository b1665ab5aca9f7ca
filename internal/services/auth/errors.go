package auth

import (
	"errors"

	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
)

// Ошибки бизнес-уровня. Транспорт сопоставляет их с кодами ответа через errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrMissingToken       = errors.New("missing or invalid authorization header")
	ErrForbidden          = errors.New("insufficient role")
)

// Ошибки разбора токена.
var (
	ErrInvalidSignature = jwt.ErrInvalidSignature
	ErrExpired          = jwt.ErrExpired
	ErrMalformed        = jwt.ErrMalformed
)

// ValidationError ошибка входных данных с сообщением для клиента.
// errors.Is(err, ErrValidation) для неё истинно.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Is позволяет сравнивать ValidationError с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

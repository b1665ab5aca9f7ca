package register

import (
	"context"

	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service регистрирует учётные записи.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
}

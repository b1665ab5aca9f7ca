package login

import (
	"context"

	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Service выполняет вход по email и паролю.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

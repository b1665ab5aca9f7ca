// Команда create-admin создаёт учётную запись администратора.
// Пароль читается с терминала без эха.
//
//	CONFIG_PATH=config/local.yaml create-admin -email admin@foodshare.kz -name Admin
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/magabrotheeeer/foodshare/internal/config"
	"github.com/magabrotheeeer/foodshare/internal/lib/password"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/migrations"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// readPassword подменяется в тестах.
var readPassword = term.ReadPassword

type adminStore interface {
	UserExists(ctx context.Context, email string) (bool, error)
	RegisterUser(ctx context.Context, user models.Account) (*models.Account, error)
}

type hasher interface {
	Hash(plain string) (string, error)
}

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Admin", "admin display name")
	flag.Parse()

	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	plain, err := promptPassword(os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("failed to read password", sl.Err(err))
		os.Exit(1)
	}

	admin, err := createAdmin(ctx, db, password.NewHasher(cfg.BcryptCost), *email, *name, plain)
	if err != nil {
		logger.Error("failed to create admin", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("admin created", slog.String("id", admin.ID), sl.Email(admin.Email))
}

// promptPassword читает пароль дважды. Если stdin не терминал, читается одна строка.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", auth.ErrPasswordMismatch
	}
	return string(first), nil
}

func createAdmin(ctx context.Context, store adminStore, h hasher, email, name, plain string) (*models.Account, error) {
	const op = "create-admin"

	email = models.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", auth.ErrValidation)
	}
	if utf8.RuneCountInString(plain) < auth.MinPasswordLength {
		return nil, auth.ErrWeakPassword
	}

	exists, err := store.UserExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, auth.ErrDuplicateEmail
	}

	hashed, err := h.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Admin"
	}
	created, err := store.RegisterUser(ctx, models.Account{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Phone:        models.DefaultPhone,
		City:         models.DefaultCity,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Package sl содержит вспомогательные функции для работы с логгером slog:
// создание логгера под окружение и атрибуты для ошибок и персональных данных.
package sl

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Окружения, от которых зависит формат логов.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger возвращает текстовый логгер для local и JSON-логгер для остальных окружений.
func SetupLogger(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Email маскирует локальную часть адреса: alice@x.com -> a***@x.com.
func Email(email string) slog.Attr {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return slog.String("email", "***")
	}
	return slog.String("email", email[:1]+"***"+email[at:])
}

// Package health содержит обработчики проверки состояния сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status ответ проверки состояния.
type Status struct {
	Success bool   `json:"success" example:"true"`
	Status  string `json:"status" example:"UP"`
	Message string `json:"message,omitempty"`
}

const (
	statusUp   = "UP"
	statusDown = "DOWN"

	pingTimeout = 2 * time.Second
)

// Handler обработчики /api/health.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// Health сообщает, что процесс обслуживает запросы.
//
// @Summary      Состояние сервиса
// @Tags         health
// @Produce      json
// @Success      200 {object} Status
// @Router       /api/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Status{Success: true, Status: statusUp})
}

// Ping отвечает pong.
//
// @Summary      Ping
// @Tags         health
// @Produce      json
// @Success      200 {object} Status
// @Router       /api/health/ping [get]
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Status{Success: true, Status: statusUp, Message: "pong"})
}

// Database проверяет соединение с базой данных.
//
// @Summary      Состояние базы данных
// @Tags         health
// @Produce      json
// @Success      200 {object} Status
// @Failure      503 {object} Status
// @Router       /api/health/database [get]
func (h *Handler) Database(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.database"

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database is unreachable", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, Status{Success: false, Status: statusDown, Message: "database is unreachable"})
		return
	}
	render.JSON(w, r, Status{Success: true, Status: statusUp})
}

package response

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
)

// Fail пишет ответ для ошибки сервиса. Непредвиденные ошибки логируются
// целиком, ожидаемые отказы только причиной.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := FromError(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("reason", resp.Message))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// BadRequest пишет 400 с сообщением.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(msg))
}

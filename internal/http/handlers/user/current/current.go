// Package current реализует HTTP-обработчик получения текущего пользователя.
//
// Личность пользователя восстанавливается middleware из JWT и передается
// через контекст запроса; обработчик дочитывает актуальный баланс из хранилища.
package current

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/middlewarectx"
	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/models"
)

// Service описывает интерфейс получения пользователя по email.
type Service interface {
	CurrentUser(ctx context.Context, email string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает GET /api/v1/users/current.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || email == "" {
		log.Error("email not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidToken))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), email)
	if err != nil {
		log.Error("failed to load current user", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidToken))
		return
	}

	render.JSON(w, r, map[string]any{
		"code":     http.StatusOK,
		"username": user.Email,
		"roles":    user.Roles,
		"balance":  user.Balance,
	})
}

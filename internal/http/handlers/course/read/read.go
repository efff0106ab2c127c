// Package read реализует HTTP-обработчик получения курса по коду.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/services/course"
)

// Service описывает интерфейс каталога курсов.
type Service interface {
	Get(ctx context.Context, code string) (*models.Course, error)
}

// Handler обрабатывает HTTP-запросы чтения курса.
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

// ServeHTTP обрабатывает GET /api/v1/courses/{code}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	code := chi.URLParam(r, "code")
	c, err := h.service.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			log.Error("course not found", slog.String("code", code))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgCourseNotFound))
			return
		}
		log.Error("failed to read course", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "could not read course"))
		return
	}

	body := map[string]any{
		"code": c.Code,
		"type": c.Type,
	}
	if c.Price != nil {
		body["price"] = *c.Price
	}
	render.JSON(w, r, body)
}

// Package list реализует HTTP-обработчик получения каталога курсов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/models"
)

// Item — элемент каталога в JSON-ответе. Цена опускается для бесплатных курсов.
type Item struct {
	Code  string   `json:"code"`
	Type  string   `json:"type"`
	Price *float64 `json:"price,omitempty"`
}

// Service описывает интерфейс каталога курсов.
type Service interface {
	List(ctx context.Context) ([]*models.Course, error)
}

// Handler обрабатывает HTTP-запросы списка курсов.
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

// ServeHTTP обрабатывает GET /api/v1/courses.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courses, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "could not list courses"))
		return
	}

	items := make([]Item, 0, len(courses))
	for _, c := range courses {
		items = append(items, Item{
			Code:  c.Code,
			Type:  c.Type,
			Price: c.Price,
		})
	}
	render.JSON(w, r, items)
}

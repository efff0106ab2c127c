// Package edit реализует HTTP-обработчик редактирования курса администратором.
//
// Роль администратора проверяется middleware до валидации тела запроса.
// Уникальность кода проверяется без учета самого редактируемого курса.
package edit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/services/course"
)

// Service описывает интерфейс каталога курсов.
type Service interface {
	Edit(ctx context.Context, code string, req models.DummyCourse) error
}

// Handler обрабатывает HTTP-запросы редактирования курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST /api/v1/courses/{code}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.edit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	code := chi.URLParam(r, "code")

	var req models.DummyCourse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidJSON))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.FieldErrors(http.StatusUnauthorized,
			response.CourseValidationErrors(err.(validator.ValidationErrors))))
		return
	}

	if err := h.service.Edit(r.Context(), code, req); err != nil {
		switch {
		case errors.Is(err, course.ErrNotFound):
			log.Error("course not found", slog.String("code", code))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgCourseNotFound))
		case errors.Is(err, course.ErrPriceRequired):
			log.Error("price required for paid course")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgPriceRequired))
		case errors.Is(err, course.ErrDuplicateCode):
			log.Error("course code already exists")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.FieldErrors(http.StatusUnauthorized, map[string]string{
				"unique": response.MsgCodeNotUnique,
			}))
		default:
			log.Error("failed to edit course", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "could not edit course"))
		}
		return
	}

	log.Info("course updated", slog.String("code", code))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"success": true})
}

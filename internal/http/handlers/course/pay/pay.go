// Package pay реализует HTTP-обработчик оплаты курса.
//
// Обработчик извлекает email пользователя из контекста, делегирует оплату
// движку и транслирует бизнес-ошибки в контрактные HTTP-ответы:
// неизвестный курс — 401, бесплатный/купленный курс и нехватка средств — 406.
package pay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/middlewarectx"
	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/services/payment"
)

// Result — JSON-ответ успешной оплаты.
type Result struct {
	Success    bool       `json:"success"`
	CourseType string     `json:"course_type"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Service описывает интерфейс движка оплаты.
type Service interface {
	Pay(ctx context.Context, email, courseCode string) (*payment.PayResult, error)
}

// Handler обрабатывает HTTP-запросы оплаты курса.
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

// ServeHTTP обрабатывает POST /api/v1/courses/{code}/pay.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.pay"

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

	code := chi.URLParam(r, "code")
	result, err := h.service.Pay(r.Context(), email, code)
	if err != nil {
		h.renderPayError(w, r, log, code, err)
		return
	}

	log.Info("course paid", slog.String("username", email), slog.String("code", code))
	render.JSON(w, r, Result{
		Success:    true,
		CourseType: result.CourseType,
		ExpiresAt:  result.ExpiresAt,
	})
}

func (h *Handler) renderPayError(w http.ResponseWriter, r *http.Request, log *slog.Logger, code string, err error) {
	switch {
	case errors.Is(err, payment.ErrCourseNotFound):
		log.Error("course not found", slog.String("code", code))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgCourseNotFound))
	case errors.Is(err, payment.ErrCourseFree):
		log.Error("course is free", slog.String("code", code))
		render.Status(r, http.StatusNotAcceptable)
		render.JSON(w, r, response.Error(http.StatusNotAcceptable, response.MsgCourseFree))
	case errors.Is(err, payment.ErrAlreadyOwned):
		log.Error("course already owned", slog.String("code", code))
		render.Status(r, http.StatusNotAcceptable)
		render.JSON(w, r, response.Error(http.StatusNotAcceptable, response.MsgAlreadyOwned))
	case errors.Is(err, payment.ErrInsufficientFunds):
		log.Error("insufficient funds", slog.String("code", code))
		render.Status(r, http.StatusNotAcceptable)
		render.JSON(w, r, response.Error(http.StatusNotAcceptable, response.MsgInsufficientFunds))
	default:
		log.Error("payment failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "could not pay course"))
	}
}

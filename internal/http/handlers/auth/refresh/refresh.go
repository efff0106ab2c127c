// Package refresh реализует HTTP-обработчик обновления JWT по refresh-токену.
//
// Предъявленный refresh-токен ротируется: старый становится недействительным,
// в ответе возвращается новая пара токенов. Неизвестный или истекший токен
// возвращает сообщение "JWT Refresh Token Not Found".
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/services/auth"
)

// Request — входные данные для обновления токена.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Service описывает интерфейс бизнес-логики обновления токенов.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы обновления токена.
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

// ServeHTTP обрабатывает POST /api/v1/token/refresh.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgRefreshNotFound))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgRefreshNotFound))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshNotFound) {
			log.Error("refresh token not found")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgRefreshNotFound))
			return
		}
		log.Error("refresh failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "failed to refresh token"))
		return
	}

	log.Info("token refreshed")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"token":         tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

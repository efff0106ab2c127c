// Package login реализует HTTP-обработчик аутентификации пользователей.
//
// При успешной проверке пароля возвращается JSON с JWT и refresh-токеном;
// любая ошибка входа возвращается единым сообщением "Invalid credentials.",
// не раскрывая, какое из полей оказалось неверным.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/services/auth"
)

// Request — структура входных данных для аутентификации.
// Поле username содержит email пользователя.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*auth.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы аутентификации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики аутентификации
	validate *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST /api/v1/auth.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidCredentials))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidCredentials))
		return
	}

	tokens, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidCredentials))
		return
	}

	log.Info("login success", slog.String("username", req.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"token":         tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

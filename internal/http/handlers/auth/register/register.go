// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Обработчик валидирует email и пароль, создает пользователя со стартовым
// депозитом и возвращает JWT, роли, баланс и refresh-токен. Ошибки
// валидации возвращаются картой поле→сообщение.
package register

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

// Request — входные данные для регистрации.
// Поле username содержит email пользователя, пароль — минимум 6 символов.
type Request struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, email, rawPassword string) (*auth.RegisterResult, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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

// ServeHTTP обрабатывает POST /api/v1/register.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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
			response.UserValidationErrors(err.(validator.ValidationErrors))))
		return
	}

	result, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			log.Error("email already registered", slog.String("username", req.Username))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.FieldErrors(http.StatusUnauthorized, map[string]string{
				"unique": response.MsgUserExists,
			}))
			return
		}
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "failed to register user"))
		return
	}

	log.Info("user registered", slog.String("username", req.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"token":         result.Tokens.AccessToken,
		"ROLES":         result.Roles,
		"balance":       result.Balance,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

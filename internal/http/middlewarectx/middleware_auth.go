// Package middlewarectx содержит HTTP middleware для проверки JWT токенов,
// контроля роли администратора, ограничения частоты запросов и метрик.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и в случае успеха добавляет в контекст email, роли и uid
// пользователя для дальнейшего использования в обработчиках.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/response"
	libjwt "github.com/study-on/course-store/internal/lib/jwt"
	"github.com/study-on/course-store/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для email пользователя в контексте
	User Key = "email"
	// Roles — ключ для ролей пользователя в контексте
	Roles Key = "roles"
	// UserUID — ключ для uid пользователя в контексте
	UserUID Key = "user_uid"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*libjwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет email, роли и uid пользователя в контекст запроса,
// иначе возвращает ошибку {"code": 401, "message": "Invalid JWT Token"}.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidToken))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgInvalidToken))
				return
			}
			ctx := context.WithValue(r.Context(), User, claims.Email)
			ctx = context.WithValue(ctx, Roles, claims.Roles)
			ctx = context.WithValue(ctx, UserUID, claims.UserUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/models"
)

// AdminOnlyMiddleware пропускает только пользователей с ролью ROLE_SUPER_ADMIN.
// Проверка выполняется до какой-либо валидации тела запроса.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := r.Context().Value(Roles).([]string)
			if !ok || !models.HasRole(roles, models.RoleSuperAdmin) {
				log.Error("admin role required")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(http.StatusUnauthorized, response.MsgRoleError))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

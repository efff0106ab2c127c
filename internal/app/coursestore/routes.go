// Package coursestore предоставляет маршруты для основного приложения.
package coursestore

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/study-on/course-store/internal/http/handlers/auth/login"
	"github.com/study-on/course-store/internal/http/handlers/auth/refresh"
	"github.com/study-on/course-store/internal/http/handlers/auth/register"
	"github.com/study-on/course-store/internal/http/handlers/course/create"
	"github.com/study-on/course-store/internal/http/handlers/course/edit"
	"github.com/study-on/course-store/internal/http/handlers/course/list"
	"github.com/study-on/course-store/internal/http/handlers/course/pay"
	"github.com/study-on/course-store/internal/http/handlers/course/read"
	"github.com/study-on/course-store/internal/http/handlers/user/current"
	"github.com/study-on/course-store/internal/http/middlewarectx"
	authservice "github.com/study-on/course-store/internal/services/auth"
	courseservice "github.com/study-on/course-store/internal/services/course"
	paymentservice "github.com/study-on/course-store/internal/services/payment"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	courseService *courseservice.CourseService,
	paymentService *paymentservice.PaymentService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth", login.New(logger, authService).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/token/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/courses", list.New(logger, courseService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/users/current", current.New(logger, authService).ServeHTTP)
			r.Post("/courses/{code}/pay", pay.New(logger, paymentService).ServeHTTP)

			// Управление каталогом — только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/courses/", create.New(logger, courseService).ServeHTTP)
				r.Post("/courses/{code}", edit.New(logger, courseService).ServeHTTP)
			})
		})

		// Чтение курса по коду регистрируется после /courses/{code}/pay,
		// открыто без аутентификации
		r.Get("/courses/{code}", read.New(logger, courseService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

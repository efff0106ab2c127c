// Package coursestore собирает HTTP-приложение магазина курсов:
// хранилище, миграции, кеш, сервисы и маршруты.
package coursestore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/study-on/course-store/internal/cache"
	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/lib/jwt"
	"github.com/study-on/course-store/internal/migrations"
	authservice "github.com/study-on/course-store/internal/services/auth"
	courseservice "github.com/study-on/course-store/internal/services/course"
	paymentservice "github.com/study-on/course-store/internal/services/payment"
	"github.com/study-on/course-store/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает базу, применяет миграции,
// инициализирует кеш и сервисы, регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, db, jwtMaker, cfg.Payments, cfg.RefreshTTL)
	courseService := courseservice.NewCourseService(db, cacheRedis, logger)
	paymentService := paymentservice.New(db, cfg.Payments, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, courseService, paymentService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}

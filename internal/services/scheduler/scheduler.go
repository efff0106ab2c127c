// Package scheduler реализует периодический поиск истекающих аренд
// и публикацию уведомлений в RabbitMQ по одному сообщению на пользователя.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/rabbitmq"
)

// Repository описывает методы хранилища, нужные планировщику: выборку
// истекающих аренд и очистку истекших refresh-токенов.
type Repository interface {
	FindExpiringRentals(ctx context.Context, now time.Time, lookahead time.Duration) ([]*models.UserRental, error)
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error)
}

// Publisher публикует сообщения в exchange уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// AMQPPublisher адаптирует *amqp.Channel к интерфейсу Publisher.
type AMQPPublisher struct {
	Channel *amqp.Channel
}

// Publish публикует сообщение через канал RabbitMQ.
func (p *AMQPPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Channel, exchange, routingKey, message)
}

// SchedulerService находит аренды, истекающие в настроенном окне,
// и публикует по одному уведомлению на пользователя.
type SchedulerService struct {
	repo      Repository
	publisher Publisher
	lookahead time.Duration
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo Repository, publisher Publisher,
	lookahead time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		lookahead: lookahead,
		log:       log,
	}
}

// Run запускает периодический проход планировщика до отмены контекста.
// Каждый проход чистит истекшие refresh-токены и публикует уведомления
// об истекающих арендах.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.PurgeExpiredRefreshTokens(ctx); err != nil {
				s.log.Error("purge of expired refresh tokens failed", sl.Err(err))
			}
			s.log.Info("starting scan for expiring rentals")
			if err := s.PublishExpiringRentals(ctx); err != nil {
				s.log.Error("scan for expiring rentals failed", sl.Err(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// PurgeExpiredRefreshTokens удаляет refresh-токены, истекшие к текущему
// моменту, и логирует количество удаленных записей.
func (s *SchedulerService) PurgeExpiredRefreshTokens(ctx context.Context) error {
	const op = "scheduler.PurgeExpiredRefreshTokens"

	deleted, err := s.repo.DeleteExpiredRefreshTokens(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("expired refresh tokens purged", slog.Int("deleted", deleted))
	return nil
}

// PublishExpiringRentals выполняет один проход: выбирает истекающие аренды,
// группирует их по пользователю и публикует уведомления. Ошибка публикации
// для одного пользователя логируется, остальные пользователи обрабатываются
// дальше; по окончании логируется суммарное число ошибок.
func (s *SchedulerService) PublishExpiringRentals(ctx context.Context) error {
	const op = "scheduler.PublishExpiringRentals"

	rentals, err := s.repo.FindExpiringRentals(ctx, time.Now().UTC(), s.lookahead)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	notices := groupByUser(rentals)
	var failed int
	for _, notice := range notices {
		if err := s.publisher.Publish("notifications", "rent.expiring", notice); err != nil {
			failed++
			s.log.Error("failed to publish rent expiring notice",
				slog.String("email", notice.Email), sl.Err(err))
		}
	}

	s.log.Info("scan for expiring rentals finished",
		slog.Int("users", len(notices)),
		slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%s: failed to publish %d of %d notices", op, failed, len(notices))
	}
	return nil
}

// groupByUser собирает по одному уведомлению на пользователя,
// сохраняя порядок выборки.
func groupByUser(rentals []*models.UserRental) []*models.RentalNotice {
	byEmail := make(map[string]*models.RentalNotice)
	var order []*models.RentalNotice
	for _, r := range rentals {
		notice, ok := byEmail[r.Email]
		if !ok {
			notice = &models.RentalNotice{Email: r.Email}
			byEmail[r.Email] = notice
			order = append(order, notice)
		}
		notice.Rentals = append(notice.Rentals, models.ExpiringRental{
			CourseCode:  r.CourseCode,
			CourseTitle: r.CourseTitle,
			ExpiresAt:   r.ExpiresAt,
		})
	}
	return order
}

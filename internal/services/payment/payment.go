// Package payment реализует движок оплаты курсов: проверку бизнес-правил
// и атомарное списание средств с созданием транзакции.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/storage/repository"
)

// Бизнес-ошибки оплаты. Проверяются по порядку, каждая прерывает оплату.
var (
	// ErrCourseNotFound возвращается для неизвестного кода курса.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseFree возвращается при попытке оплатить бесплатный курс.
	ErrCourseFree = errors.New("course is free")
	// ErrAlreadyOwned возвращается, если у пользователя уже есть действующая
	// транзакция по этому курсу.
	ErrAlreadyOwned = errors.New("course already owned")
	// ErrInsufficientFunds возвращается, если на счету меньше цены курса.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

var paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "course_store_payments_total",
	Help: "Количество успешных оплат курсов по типам.",
}, []string{"course_type"})

// Repository описывает методы хранилища, нужные движку оплаты.
type Repository interface {
	// GetUserByEmail возвращает пользователя-плательщика.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetCourseByCode возвращает курс по коду.
	GetCourseByCode(ctx context.Context, code string) (*models.Course, error)
	// CountActiveCourseTransactions считает действующие транзакции
	// пользователя по коду курса.
	CountActiveCourseTransactions(ctx context.Context, userUID, courseCode string, now time.Time) (int, error)
	// PayCourse атомарно списывает средства и создает транзакцию оплаты,
	// перепроверяя владение курсом под блокировкой строки пользователя.
	PayCourse(ctx context.Context, userUID string, courseID int, amount float64, expiresAt *time.Time, now time.Time) error
}

// PayResult — результат успешной оплаты.
type PayResult struct {
	CourseType string     // Тип оплаченного курса
	ExpiresAt  *time.Time // Окончание аренды, nil для покупки
}

// PaymentService реализует бизнес-логику оплаты курсов.
type PaymentService struct {
	repo     Repository
	payments config.Payments
	log      *slog.Logger
}

// New создает новый экземпляр PaymentService.
func New(repo Repository, payments config.Payments, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		payments: payments,
		log:      log,
	}
}

// Pay проводит оплату курса пользователем. Предусловия проверяются по
// порядку: курс существует, курс платный, курс еще не куплен, средств
// достаточно. Списание баланса и создание транзакции выполняются одной
// транзакцией базы данных; для аренды транзакция получает срок окончания
// now + настроенный период аренды.
func (s *PaymentService) Pay(ctx context.Context, email, courseCode string) (*PayResult, error) {
	const op = "payment.Pay"
	now := time.Now().UTC()

	course, err := s.repo.GetCourseByCode(ctx, courseCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if course.Type == models.CourseTypeFree || course.Price == nil {
		return nil, ErrCourseFree
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.CountActiveCourseTransactions(ctx, user.UID, course.Code, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return nil, ErrAlreadyOwned
	}

	price := roundMoney(*course.Price)
	if user.Balance < price {
		return nil, ErrInsufficientFunds
	}

	var expiresAt *time.Time
	if course.Type == models.CourseTypeRent {
		expiry := now.Add(s.payments.RentalPeriod)
		expiresAt = &expiry
	}

	// Баланс и владение курсом перечитываются под блокировкой внутри
	// транзакции, поэтому конкурентная оплата не сможет ни списать средства
	// дважды, ни оплатить один курс двумя транзакциями.
	if err = s.repo.PayCourse(ctx, user.UID, course.ID, price, expiresAt, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyOwned) {
			return nil, ErrAlreadyOwned
		}
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("course paid",
		slog.String("user_uid", user.UID),
		slog.String("course_code", course.Code),
		slog.Float64("amount", price))
	paymentsTotal.WithLabelValues(course.Type).Inc()

	return &PayResult{
		CourseType: course.Type,
		ExpiresAt:  expiresAt,
	}, nil
}

// roundMoney округляет сумму до копеек, чтобы не накапливать дрейф float64.
func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

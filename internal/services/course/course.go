// Package course содержит бизнес-логику каталога курсов,
// включая кеширование чтений и проверки уникальности кода.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/storage/repository"
)

// Бизнес-ошибки каталога.
var (
	// ErrNotFound возвращается для неизвестного кода курса.
	ErrNotFound = errors.New("course not found")
	// ErrDuplicateCode возвращается, когда код курса уже занят другим курсом.
	ErrDuplicateCode = errors.New("course code already exists")
	// ErrPriceRequired возвращается для платного курса без цены.
	ErrPriceRequired = errors.New("price required for paid course")
)

// Repository определяет методы для работы с курсами в хранилище.
type Repository interface {
	// ListCourses возвращает все курсы каталога.
	ListCourses(ctx context.Context) ([]*models.Course, error)
	// GetCourseByCode возвращает курс по коду.
	GetCourseByCode(ctx context.Context, code string) (*models.Course, error)
	// CreateCourse добавляет новый курс и возвращает его ID.
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	// UpdateCourse обновляет курс по ID.
	UpdateCourse(ctx context.Context, course models.Course, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CourseService реализует бизнес-логику каталога курсов.
type CourseService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(repo Repository, cache Cache, log *slog.Logger) *CourseService {
	return &CourseService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает все курсы каталога.
func (s *CourseService) List(ctx context.Context) ([]*models.Course, error) {
	return s.repo.ListCourses(ctx)
}

// Get возвращает курс по коду, используя кеш или репозиторий.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	var result *models.Course
	cacheKey := fmt.Sprintf("course:%s", code)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.GetCourseByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Create добавляет новый курс в каталог. Цена обязательна для платных
// курсов; у бесплатных цена не хранится. Код курса должен быть уникальным.
func (s *CourseService) Create(ctx context.Context, req models.DummyCourse) (int, error) {
	const op = "course.Create"
	course, err := courseFromRequest(req)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateCourse(ctx, *course)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrDuplicateCode
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new course", slog.Int("id", id), slog.String("code", course.Code))
	s.invalidate(course.Code)
	return id, nil
}

// Edit обновляет курс с кодом code. Уникальность кода проверяется
// без учета самого редактируемого курса.
func (s *CourseService) Edit(ctx context.Context, code string, req models.DummyCourse) error {
	const op = "course.Edit"
	existing, err := s.repo.GetCourseByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	course, err := courseFromRequest(req)
	if err != nil {
		return err
	}

	if course.Code != existing.Code {
		duplicate, err := s.repo.GetCourseByCode(ctx, course.Code)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if duplicate != nil {
			return ErrDuplicateCode
		}
	}

	if _, err = s.repo.UpdateCourse(ctx, *course, existing.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("updated course", slog.Int("id", existing.ID), slog.String("code", course.Code))
	s.invalidate(existing.Code)
	s.invalidate(course.Code)
	return nil
}

func (s *CourseService) invalidate(code string) {
	cacheKey := fmt.Sprintf("course:%s", code)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

func courseFromRequest(req models.DummyCourse) (*models.Course, error) {
	course := &models.Course{
		Code:  req.Code,
		Title: req.Title,
		Type:  req.Type,
	}
	switch req.Type {
	case models.CourseTypeFree:
		course.Price = nil
	default:
		if req.Price == nil {
			return nil, ErrPriceRequired
		}
		course.Price = req.Price
	}
	return course, nil
}

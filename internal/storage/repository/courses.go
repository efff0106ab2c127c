package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/study-on/course-store/internal/models"
)

// ListCourses возвращает все курсы каталога.
func (s *Storage) ListCourses(ctx context.Context) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, title, type, price
			  FROM courses
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		var c models.Course
		var price sql.NullFloat64
		if err = rows.Scan(&c.ID, &c.Code, &c.Title, &c.Type, &price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if price.Valid {
			c.Price = &price.Float64
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCourseByCode возвращает курс по его коду.
func (s *Storage) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	const op = "storage.GetCourseByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, title, type, price
			  FROM courses
			  WHERE code = $1`
	c := &models.Course{}
	var price sql.NullFloat64
	if err := s.DB.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.Code, &c.Title, &c.Type, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if price.Valid {
		c.Price = &price.Float64
	}
	return c, nil
}

// CreateCourse вставляет новый курс и возвращает его ID.
// Возвращает ErrDuplicate, если код курса уже занят.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (code, title, type, price)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		course.Code, course.Title, course.Type, course.Price).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateCourse обновляет курс по ID и возвращает количество обновлённых строк.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course, id int) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET code = $1, title = $2, type = $3, price = $4
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		course.Code, course.Title, course.Type, course.Price, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

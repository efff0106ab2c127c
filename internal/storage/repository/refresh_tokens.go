package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/study-on/course-store/internal/models"
)

// CreateRefreshToken сохраняет новый refresh-токен пользователя.
func (s *Storage) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	const op = "storage.CreateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO refresh_tokens (token, user_uid, expires_at)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, token.Token, token.UserUID, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetRefreshToken возвращает refresh-токен по его строке.
func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.GetRefreshToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, user_uid, expires_at, created_at
			  FROM refresh_tokens
			  WHERE token = $1`
	t := &models.RefreshToken{}
	row := s.DB.QueryRowContext(ctx, query, token)
	if err := row.Scan(&t.Token, &t.UserUID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// RotateRefreshToken атомарно заменяет старый refresh-токен новым.
// Удаление и вставка выполняются одной транзакцией базы данных: из двух
// конкурентных обновлений одним и тем же токеном удалить старую запись
// успеет только одно, второе получит ErrNotFound.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldToken string, newToken models.RefreshToken) error {
	const op = "storage.RotateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	query := `INSERT INTO refresh_tokens (token, user_uid, expires_at)
			  VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, query, newToken.Token, newToken.UserUID, newToken.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteExpiredRefreshTokens удаляет refresh-токены, истекшие к моменту now.
func (s *Storage) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error) {
	const op = "storage.DeleteExpiredRefreshTokens"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

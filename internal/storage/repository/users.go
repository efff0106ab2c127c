package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/study-on/course-store/internal/models"
)

// RegisterUser сохраняет нового пользователя со стартовым балансом deposit
// и создает депозитную транзакцию. Вставка пользователя и депозита выполняется
// одной транзакцией базы данных, поэтому зарегистрированный пользователь
// не может остаться без стартового депозита.
// При повторной регистрации email возвращает ErrDuplicate.
func (s *Storage) RegisterUser(ctx context.Context, user models.User, deposit float64) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newUID string
	query := `INSERT INTO users (email, password_hash, roles, balance)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err = tx.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, joinRoles(user.Roles), deposit).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO transactions (user_uid, type, amount)
			 VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, query, newUID, models.TransactionTypeDeposit, deposit); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, roles, balance, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, roles, balance, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var roles string
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &roles, &u.Balance, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Roles = splitRoles(roles)
	return u, nil
}

// Роли хранятся одной текстовой колонкой через запятую.
func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, ",")
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/study-on/course-store/internal/models"
)

// PayCourse списывает amount со счета пользователя и создает транзакцию оплаты
// курса одной транзакцией базы данных. Баланс читается с блокировкой строки
// (SELECT ... FOR UPDATE), поэтому конкурентные оплаты одного пользователя
// не могут прочитать баланс до того, как его запишет другая оплата. Владение
// курсом перепроверяется под той же блокировкой: из двух конкурентных оплат
// одного курса вторая увидит транзакцию первой и получит ErrAlreadyOwned.
// Возвращает ErrInsufficientFunds, если средств на счету недостаточно.
func (s *Storage) PayCourse(ctx context.Context, userUID string, courseID int, amount float64, expiresAt *time.Time, now time.Time) error {
	const op = "storage.PayCourse"
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

	var balance float64
	query := `SELECT balance FROM users WHERE uid = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, query, userUID).Scan(&balance); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var active int
	query = `SELECT COUNT(*)
			 FROM transactions
			 WHERE user_uid = $1
			   AND course_id = $2
			   AND type = $3
			   AND (expires_at IS NULL OR expires_at > $4)`
	if err = tx.QueryRowContext(ctx, query,
		userUID, courseID, models.TransactionTypePayment, now).Scan(&active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if active > 0 {
		return fmt.Errorf("%s: %w", op, ErrAlreadyOwned)
	}

	if balance < amount {
		return fmt.Errorf("%s: %w", op, ErrInsufficientFunds)
	}

	query = `UPDATE users SET balance = balance - $1 WHERE uid = $2`
	if _, err = tx.ExecContext(ctx, query, amount, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO transactions (user_uid, course_id, type, amount, expires_at)
			 VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, query,
		userUID, courseID, models.TransactionTypePayment, amount, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountActiveCourseTransactions возвращает количество действующих транзакций
// оплаты курса с данным кодом у пользователя. Аренда учитывается только до
// момента истечения, покупка — бессрочно.
func (s *Storage) CountActiveCourseTransactions(ctx context.Context, userUID, courseCode string, now time.Time) (int, error) {
	const op = "storage.CountActiveCourseTransactions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM transactions t
			  JOIN courses c ON c.id = t.course_id
			  WHERE t.user_uid = $1
			    AND c.code = $2
			    AND t.type = $3
			    AND (t.expires_at IS NULL OR t.expires_at > $4)`
	var count int
	err := s.DB.QueryRowContext(ctx, query,
		userUID, courseCode, models.TransactionTypePayment, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// FindExpiringRentals находит аренды, срок которых истекает в окне
// [now, now+lookahead), вместе с email владельца и данными курса.
func (s *Storage) FindExpiringRentals(ctx context.Context, now time.Time, lookahead time.Duration) ([]*models.UserRental, error) {
	const op = "storage.FindExpiringRentals"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, c.code, c.title, t.expires_at
			  FROM transactions t
			  JOIN users u ON u.uid = t.user_uid
			  JOIN courses c ON c.id = t.course_id
			  WHERE t.type = $1
			    AND t.expires_at IS NOT NULL
			    AND t.expires_at > $2
			    AND t.expires_at <= $3
			  ORDER BY u.email, t.expires_at`
	rows, err := s.DB.QueryContext(ctx, query,
		models.TransactionTypePayment, now, now.Add(lookahead))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserRental
	for rows.Next() {
		var r models.UserRental
		if err = rows.Scan(&r.Email, &r.CourseCode, &r.CourseTitle, &r.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

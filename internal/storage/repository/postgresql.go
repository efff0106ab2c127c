// Package repository реализует хранилище данных на основе PostgreSQL
// для магазина курсов. Предоставляет методы работы с пользователями,
// каталогом курсов, транзакциями оплаты и refresh-токенами.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы транслируют их в бизнес-ошибки API.
var (
	// ErrNotFound возвращается, когда запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds возвращается при попытке списать больше, чем есть на счету.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyOwned возвращается, когда действующая транзакция оплаты курса
	// уже существует на момент списания.
	ErrAlreadyOwned = errors.New("course already owned")
	// ErrDuplicate возвращается при нарушении уникальности (email, код курса).
	ErrDuplicate = errors.New("duplicate")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с сущностями магазина курсов.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'courses'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table courses missing or query error: %w", err)
	}
	return nil
}

package models

import "time"

// Типы транзакций. Оплата списывает средства со счета,
// депозит зачисляет их при регистрации. Записи транзакций создаются
// атомарно вместе с изменением баланса и никогда не изменяются.
const (
	TransactionTypePayment = "payment"
	TransactionTypeDeposit = "deposit"
)

// UserRental — строка выборки истекающих аренд: email владельца плюс данные аренды.
type UserRental struct {
	Email       string
	CourseCode  string
	CourseTitle string
	ExpiresAt   time.Time
}

// ExpiringRental описывает одну истекающую аренду для письма-напоминания.
type ExpiringRental struct {
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RentalNotice агрегирует истекающие аренды одного пользователя.
// Планировщик публикует по одному RentalNotice на пользователя.
type RentalNotice struct {
	Email   string           `json:"email"`
	Rentals []ExpiringRental `json:"rentals"`
}

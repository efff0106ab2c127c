// Package models содержит доменные структуры магазина курсов:
// пользователей, курсы, транзакции оплаты и refresh-токены.
package models

import "time"

// Роли пользователей. Новый пользователь получает RoleUser,
// управление каталогом доступно только RoleSuperAdmin.
const (
	RoleUser       = "ROLE_USER"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная, используется как логин)
	PasswordHash string    // Хэш пароля пользователя
	Roles        []string  // Роли пользователя
	Balance      float64   // Внутренний счет, списывается при оплате курсов
	CreatedAt    time.Time // Дата регистрации
}

// IsAdmin сообщает, есть ли у пользователя права администратора каталога.
func (u *User) IsAdmin() bool {
	return HasRole(u.Roles, RoleSuperAdmin)
}

// HasRole проверяет наличие роли в списке ролей.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Формат ответов повторяет
// контракт API: ошибки возвращаются как {"code": ..., "message": ...} либо
// {"code": ..., "errors": {поле: сообщение}}.
package response

import (
	"github.com/go-playground/validator"
)

// ErrorResponse описывает стандартную структуру JSON‑ответа с ошибкой.
// Заполняется либо Message, либо Errors.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Тексты сообщений API. Ключи и формулировки зафиксированы контрактом
// и используются клиентами, менять их нельзя.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgInvalidToken       = "Invalid JWT Token"
	MsgRefreshNotFound    = "JWT Refresh Token Not Found"
	MsgInvalidJSON        = "Неверный JSON-формат данных!"
	MsgUserExists         = "Пользователь с такой электронной почтой уже существует!"
	MsgEmailBlank         = "Email обязателен для заполнения."
	MsgEmailFormat        = "Email заполнен не по формату |почтовыйАдрес@почтовыйДомен.домен| ."
	MsgPasswordBlank      = "Пароль обязателен для заполнения."
	MsgPasswordMinLength  = "Пароль должен содержать минимум 6 символов."
	MsgCourseNotFound     = "Курс не найден!"
	MsgCourseFree         = "Этот курс бесплатен и не требует оплаты!"
	MsgAlreadyOwned       = "Этот курс уже куплен!"
	MsgInsufficientFunds  = "На вашем счету недостаточно средств!"
	MsgPriceRequired      = "Цена обязательна для платного курса!"
	MsgCodeNotUnique      = "Курс с таким кодом уже существует!"
	MsgCodeBlank          = "Код курса не может быть пустым!"
	MsgTitleLength        = "Название курса должно содержать от 3 до 255 символов!"
	MsgTypeChoice         = "Тип курса должен быть одним из: buy, rent, free!"
	MsgPricePositive      = "Цена курса должна быть неотрицательной!"
	MsgRoleError          = "Доступ запрещен: требуется роль администратора!"
)

// Error возвращает ErrorResponse с кодом и текстом сообщения.
func Error(code int, msg string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: msg,
	}
}

// FieldErrors возвращает ErrorResponse с кодом и картой ошибок по полям.
func FieldErrors(code int, errs map[string]string) ErrorResponse {
	return ErrorResponse{
		Code:   code,
		Errors: errs,
	}
}

// userMessages сопоставляет нарушения валидации регистрационной формы
// с текстами сообщений для каждого поля.
var userMessages = map[string]map[string]string{
	"Username": {
		"required": MsgEmailBlank,
		"email":    MsgEmailFormat,
	},
	"Password": {
		"required": MsgPasswordBlank,
		"min":      MsgPasswordMinLength,
	},
}

// courseMessages сопоставляет нарушения валидации формы курса
// с текстами сообщений для каждого поля.
var courseMessages = map[string]map[string]string{
	"Code": {
		"required": MsgCodeBlank,
	},
	"Title": {
		"required": MsgTitleLength,
		"min":      MsgTitleLength,
		"max":      MsgTitleLength,
	},
	"Type": {
		"required": MsgTypeChoice,
		"oneof":    MsgTypeChoice,
	},
	"Price": {
		"gte": MsgPricePositive,
	},
}

// UserValidationErrors формирует карту поле→сообщение для ошибок
// валидации регистрационной формы.
func UserValidationErrors(errs validator.ValidationErrors) map[string]string {
	return translate(errs, userMessages, map[string]string{
		"Username": "username",
		"Password": "password",
	})
}

// CourseValidationErrors формирует карту поле→сообщение для ошибок
// валидации формы курса.
func CourseValidationErrors(errs validator.ValidationErrors) map[string]string {
	return translate(errs, courseMessages, map[string]string{
		"Code":  "code",
		"Title": "title",
		"Type":  "type",
		"Price": "price",
	})
}

func translate(errs validator.ValidationErrors, messages map[string]map[string]string, fields map[string]string) map[string]string {
	result := make(map[string]string, len(errs))
	for _, err := range errs {
		name, ok := fields[err.Field()]
		if !ok {
			name = err.Field()
		}
		if msg, ok := messages[err.Field()][err.ActualTag()]; ok {
			result[name] = msg
		} else {
			result[name] = "Недопустимое значение поля."
		}
	}
	return result
}

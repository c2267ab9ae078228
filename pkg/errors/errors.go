package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	// Status HTTP статус ответа бэкенда, если он был получен
	Status int   `json:"status,omitempty"`
	Cause  error `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Общие коды ошибок
const (
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrConflict     ErrorCode = "CONFLICT"
)

// Коды ошибок шлюза запросов
const (
	// ErrAuthPending сессия еще восстанавливается, запрос не отправлялся
	ErrAuthPending ErrorCode = "AUTH_PENDING"
	// ErrUnauthenticated токена нет, запрос не отправлялся
	ErrUnauthenticated ErrorCode = "UNAUTHENTICATED"
	// ErrSessionExpired бэкенд ответил 401, сессия завершена
	ErrSessionExpired ErrorCode = "SESSION_EXPIRED"
	// ErrTransport сетевая ошибка
	ErrTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrParse тело ответа не является JSON
	ErrParse ErrorCode = "PARSE_ERROR"
	// ErrApplication бэкенд вернул ошибку или success=false
	ErrApplication ErrorCode = "APPLICATION_ERROR"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// WithStatus добавляет HTTP статус к ошибке
func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Status = status
	return &clone
}

// CodeOf возвращает код ошибки или ErrInternal для чужих ошибок
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HasCode проверяет, что в цепочке ошибок есть ошибка с указанным кодом
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

// HTTPStatus возвращает соответствующий HTTP статус для ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}
	if e.Status != 0 {
		return e.Status
	}

	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrUnauthenticated, ErrSessionExpired:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrAuthPending:
		return http.StatusServiceUnavailable
	case ErrTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetUserMessage возвращает сообщение для пользователя.
// Для ошибок бэкенда показываем его сообщение, иначе общее по коду.
func (e *Error) GetUserMessage() string {
	if e == nil {
		return ""
	}

	switch e.Code {
	case ErrApplication, ErrParse, ErrValidation:
		if e.Message != "" {
			return e.Message
		}
	}

	switch e.Code {
	case ErrNotFound:
		return "Ресурс не найден"
	case ErrValidation:
		return "Ошибка валидации данных"
	case ErrUnauthorized, ErrUnauthenticated:
		return "Не авторизован, выполните вход: assistanthub auth login"
	case ErrSessionExpired:
		return "Сессия истекла, выполните вход заново: assistanthub auth login"
	case ErrAuthPending:
		return "Сессия еще восстанавливается, повторите попытку"
	case ErrForbidden:
		return "Доступ запрещен"
	case ErrConflict:
		return "Конфликт данных (например, дубликат)"
	case ErrTransport:
		return "Ошибка соединения с сервером"
	case ErrParse:
		return "Некорректный ответ сервера"
	case ErrApplication:
		return "Сервер вернул ошибку"
	case ErrInternal:
		return "Внутренняя ошибка"
	default:
		return "Произошла ошибка"
	}
}

// FailureEnvelope общий вид неуспешного ответа: {success: false, error: "..."}
type FailureEnvelope struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code,omitempty"`
}

// Failure приводит любую ошибку к конверту неуспешного ответа
func Failure(err error) FailureEnvelope {
	if err == nil {
		return FailureEnvelope{Success: false}
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return FailureEnvelope{Success: false, Error: appErr.GetUserMessage(), Code: appErr.Code}
	}
	return FailureEnvelope{Success: false, Error: err.Error(), Code: ErrInternal}
}

// MarshalFailure сериализует конверт неуспешного ответа
func MarshalFailure(err error) []byte {
	data, jsonErr := json.Marshal(Failure(err))
	if jsonErr != nil {
		return []byte(`{"success":false,"error":"internal error","code":"INTERNAL_ERROR"}`)
	}
	return data
}

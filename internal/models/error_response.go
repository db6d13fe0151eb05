package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind - категория доменной ошибки.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NotFound"        // Сущность не найдена или недоступна вызывающему
	KindInvalidState    ErrorKind = "InvalidState"    // Операция недопустима для текущего статуса
	KindValidation      ErrorKind = "ValidationError" // Отсутствуют или некорректны входные данные
	KindConflict        ErrorKind = "ConflictError"   // Дубликат идентификатора или нарушение уникальности
	KindUnauthenticated ErrorKind = "Unauthenticated" // Не удалось определить клиента
)

var kindStatusCodes = map[ErrorKind]int{
	KindNotFound:        http.StatusNotFound,
	KindInvalidState:    http.StatusPreconditionFailed,
	KindValidation:      http.StatusBadRequest,
	KindConflict:        http.StatusConflict,
	KindUnauthenticated: http.StatusUnauthorized,
}

// Сентинелы для errors.Is: совпадают с любой ошибкой того же вида.
var (
	ErrNotFound        = &ErrorResponse{Kind: KindNotFound}
	ErrInvalidState    = &ErrorResponse{Kind: KindInvalidState}
	ErrValidation      = &ErrorResponse{Kind: KindValidation}
	ErrConflict        = &ErrorResponse{Kind: KindConflict}
	ErrUnauthenticated = &ErrorResponse{Kind: KindUnauthenticated}
)

// ErrIllegalTransition возвращается при попытке недопустимого перехода статуса.
var ErrIllegalTransition = errors.New("illegal status transition")

// ErrorResponse описывает ошибку с видом, кодом и сообщением.
type ErrorResponse struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку указанного вида.
func NewErrorResponse(kind ErrorKind, message string) *ErrorResponse {
	statusCode, ok := kindStatusCodes[kind]
	if !ok {
		statusCode = http.StatusInternalServerError
	}
	return &ErrorResponse{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NotFoundf создает ошибку NotFound.
func NotFoundf(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(KindNotFound, fmt.Sprintf(format, args...))
}

// InvalidStatef создает ошибку InvalidState.
func InvalidStatef(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(KindInvalidState, fmt.Sprintf(format, args...))
}

// Validationf создает ошибку ValidationError.
func Validationf(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(KindValidation, fmt.Sprintf(format, args...))
}

// Conflictf создает ошибку ConflictError.
func Conflictf(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(KindConflict, fmt.Sprintf(format, args...))
}

// Unauthenticatedf создает ошибку Unauthenticated.
func Unauthenticatedf(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(KindUnauthenticated, fmt.Sprintf(format, args...))
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is сравнивает ошибки по виду.
func (e *ErrorResponse) Is(target error) bool {
	t, ok := target.(*ErrorResponse)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf возвращает вид доменной ошибки или пустую строку.
func KindOf(err error) ErrorKind {
	var errorResponse *ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.Kind
	}
	return ""
}

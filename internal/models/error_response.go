package models

import "net/http"

// ErrorKind - машиночитаемая категория ошибки.
type ErrorKind string

const (
	ValidationError          ErrorKind = "validation"           // Некорректные входные данные
	InvalidTransitionError   ErrorKind = "invalid_transition"   // Недопустимый переход статуса
	TurnViolationError       ErrorKind = "turn_violation"       // Нарушение очерёдности переговоров
	ConcurrencyConflictError ErrorKind = "concurrency_conflict" // Конфликт версий при записи
	NotFoundError            ErrorKind = "not_found"            // Объект не найден
	PermissionError          ErrorKind = "permission"           // Недостаточно прав для операции
	InternalError            ErrorKind = "internal"             // Внутренняя ошибка сервиса
)

// ErrorResponse описывает ошибку с кодом, категорией и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом, категорией и сообщением.
func NewErrorResponse(statusCode int, kind ErrorKind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message}
}

// NewValidationError создает ошибку валидации входных данных.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, ValidationError, message)
}

// NewInvalidTransitionError создает ошибку недопустимого перехода статуса.
func NewInvalidTransitionError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, InvalidTransitionError, message)
}

// NewTurnViolationError создает ошибку нарушения очерёдности переговоров.
func NewTurnViolationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, TurnViolationError, message)
}

// NewConcurrencyConflictError создает ошибку конфликта версий.
func NewConcurrencyConflictError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, ConcurrencyConflictError, message)
}

// NewNotFoundError создает ошибку отсутствия объекта.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, NotFoundError, message)
}

// NewPermissionError создает ошибку отсутствия прав.
func NewPermissionError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, PermissionError, message)
}

// NewInternalError создает внутреннюю ошибку сервиса.
func NewInternalError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, InternalError, message)
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// IsKind проверяет, относится ли ошибка к указанной категории.
func IsKind(err error, kind ErrorKind) bool {
	if errorResponse, ok := err.(*ErrorResponse); ok {
		return errorResponse.Kind == kind
	}
	return false
}

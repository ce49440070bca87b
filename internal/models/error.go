package models

import "fmt"

// ErrorKind clasifica los errores del motor de pedidos. Cada kind tiene un
// mapeo fijo a código HTTP en la capa API; el motor nunca conoce HTTP.
type ErrorKind string

const (
	ErrProductNotFound    ErrorKind = "PRODUCT_NOT_FOUND"
	ErrProductUnavailable ErrorKind = "PRODUCT_UNAVAILABLE"
	ErrInsufficientStock  ErrorKind = "INSUFFICIENT_STOCK"
	ErrInvalidQuantity    ErrorKind = "INVALID_QUANTITY"
	ErrEmptyOrder         ErrorKind = "EMPTY_ORDER"
	ErrMissingAddress     ErrorKind = "MISSING_ADDRESS"
	ErrOrderNotFound      ErrorKind = "ORDER_NOT_FOUND"
	ErrIllegalTransition  ErrorKind = "ILLEGAL_TRANSITION"
	ErrUnauthorized       ErrorKind = "UNAUTHORIZED"
)

// EngineError representa un error tipado del motor de pedidos
type EngineError struct {
	Kind    ErrorKind
	Message string
}

// Error implementa la interfaz error
func (e *EngineError) Error() string {
	return e.Message
}

// NewEngineError crea un error del motor con el kind indicado
func NewEngineError(kind ErrorKind, format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode representa el código de error de la API
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewUnauthorizedError crea un error de autenticación
func NewUnauthorizedError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUnauthorized, message)
}

// NewForbiddenError crea un error de permisos
func NewForbiddenError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeForbidden, message)
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeNotFound, message)
}

// NewConflictError crea un error de conflicto de estado
func NewConflictError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeConflict, message)
}

// NewRateLimitedError crea un error de rate limiting
func NewRateLimitedError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeRateLimited, message)
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeInternal, message)
}

package model

import "errors"

var (
	ErrPrecioNoEncontrado = errors.New("precio no encontrado")
	ErrCantidadInvalida   = errors.New("cantidad inválida")
)

type ErrorCode string

const (
	// Errores de reglas de precio
	ErrCodePrecioNotFound  ErrorCode = "PRECIO_NOT_FOUND"  // 404
	ErrCodePrecioConflict  ErrorCode = "PRECIO_CONFLICT"   // 409
	ErrCodePrecioInvalido  ErrorCode = "PRECIO_INVALID"    // 400

	// Errores de validación (400)
	ErrCodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"

	// Errores de sistema (500)
	ErrCodeInternalError ErrorCode = "SYS_INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrPrecioNotFound = &AppError{
		Code:       ErrCodePrecioNotFound,
		Message:    "La regla de precio no existe",
		HTTPStatus: 404,
	}
)

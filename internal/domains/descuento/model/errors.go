package model

import (
	"errors"
	"net/http"
)

var (
	ErrDescuentoNoEncontrado = errors.New("descuento no encontrado")
	ErrDescuentoAgotado      = errors.New("el descuento alcanzó su límite de usos")
	ErrCodigoDuplicado       = errors.New("ya existe un descuento con ese código")
)

type ErrorCode string

const (
	ErrCodeDescuentoNotFound ErrorCode = "DESCUENTO_NOT_FOUND"
	ErrCodeDescuentoConflict ErrorCode = "DESCUENTO_CONFLICT"
	ErrCodeDescuentoAgotado  ErrorCode = "DESCUENTO_AGOTADO"
	ErrCodeValidation        ErrorCode = "VAL_INVALID_INPUT"
	ErrCodeInternal          ErrorCode = "SYS_INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrDescuentoNotFound = &AppError{
		Code:       ErrCodeDescuentoNotFound,
		Message:    "Descuento no encontrado",
		HTTPStatus: http.StatusNotFound,
	}
	ErrDescuentoConflict = &AppError{
		Code:       ErrCodeDescuentoConflict,
		Message:    "Ya existe un descuento con ese código",
		HTTPStatus: http.StatusConflict,
	}
	ErrUsosAgotados = &AppError{
		Code:       ErrCodeDescuentoAgotado,
		Message:    "El descuento ha alcanzado su límite de usos",
		HTTPStatus: http.StatusConflict,
	}
)

package model

import (
	"errors"
	"net/http"
)

var ErrEventoNoEncontrado = errors.New("evento de auditoría no encontrado")

type ErrorCode string

const (
	ErrCodeEventoNotFound ErrorCode = "AUDITORIA_NOT_FOUND"
	ErrCodeInternal       ErrorCode = "SYS_INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var ErrEventoNotFound = &AppError{
	Code:       ErrCodeEventoNotFound,
	Message:    "Evento de auditoría no encontrado",
	HTTPStatus: http.StatusNotFound,
}

package core

import "errors"

var (
	ErrInternalServerError  = errors.New("internal server error")
	ErrNotFound             = errors.New("not found")
	ErrTransport            = errors.New("transport failure")
	ErrInvalidResponseShape = errors.New("invalid response shape")
	ErrValidation           = errors.New("validation failed")
)

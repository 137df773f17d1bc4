package service

import "errors"

// Service-level sentinel errors, mapped to HTTP codes by handlers.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login rejection errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrWrongCredentials     = errors.New("wrong credentials")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrPortalAccessDisabled = errors.New("portal access is disabled")
)

package services

import "errors"

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidFilter      = errors.New("invalid product filter")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 10000")
	ErrCartConflict       = errors.New("cart was modified concurrently")
	ErrPasswordTooLong    = errors.New("password is longer than 72 bytes")
)

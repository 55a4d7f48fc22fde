package repositories

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateProduct    = errors.New("product already exists")
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartVersionConflict = errors.New("cart was modified concurrently")
)

package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateOwner    = errors.New("an account with this owner name already exists")
	ErrValidation        = errors.New("validation failed")
	ErrMissingSecret     = errors.New("shared secret is not configured")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

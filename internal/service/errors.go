package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every business error wraps exactly one of them so callers
// can classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrTableNotFound    = fmt.Errorf("table %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrTableOccupied     = fmt.Errorf("%w: table is already occupied", ErrConflict)
	ErrTableNotOccupied  = fmt.Errorf("%w: order table is not marked occupied", ErrConflict)
	ErrOrderNotActive    = fmt.Errorf("%w: order is closed or cancelled", ErrConflict)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrTableNumberTaken  = fmt.Errorf("%w: table number already exists", ErrConflict)
	ErrCategoryExists    = fmt.Errorf("%w: category already exists", ErrConflict)
	ErrUsernameTaken     = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrAlreadyDeleted    = fmt.Errorf("%w: record is already deleted", ErrConflict)
	ErrAlreadyActive     = fmt.Errorf("%w: record is already active", ErrConflict)

	ErrEmptyItems      = fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinItemQuantity, MaxItemQuantity)
	ErrInvalidPayment  = fmt.Errorf("%w: invalid payment", ErrValidation)
	ErrInvalidInput    = fmt.Errorf("%w: invalid input", ErrValidation)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)

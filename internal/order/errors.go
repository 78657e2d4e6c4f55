package order

import "github.com/pkg/errors"

var (
	// ErrEmptyOrder rejects checkout of a zero-item order; placing one
	// is never a valid purchase.
	ErrEmptyOrder    = errors.New("order: no line items")
	ErrInvalidTotal  = errors.New("order: total must be >= 0")
	ErrInvalidStatus = errors.New("order: undefined status value")
	ErrNotFound      = errors.New("order: not found")
)

package catalog

import "github.com/pkg/errors"

var (
	ErrInvalidProduct = errors.New("catalog: invalid product")
	ErrNotFound       = errors.New("catalog: product not found")
	// ErrUnavailable surfaces on paths that must not serve the fallback
	// catalog, such as exports.
	ErrUnavailable = errors.New("catalog: store unavailable")
)

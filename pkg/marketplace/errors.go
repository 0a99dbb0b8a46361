package marketplace

import "errors"

var (
	// ErrInvalidURL means the configured base URL could not be parsed.
	ErrInvalidURL = errors.New("invalid marketplace URL")
	// ErrNetwork covers transport failures, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("marketplace request failed")
	// ErrNotFound means a product id resolved to nothing.
	ErrNotFound = errors.New("product not found")
)

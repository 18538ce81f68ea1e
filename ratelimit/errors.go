package ratelimit

import "errors"

// ErrStoreRequired is returned when no coordination store is provided.
var ErrStoreRequired = errors.New("ratelimit: coordination store is required")

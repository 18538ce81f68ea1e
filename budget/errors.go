package budget

import "errors"

// ErrStoreRequired is returned when no coordination store is provided.
var ErrStoreRequired = errors.New("budget: coordination store is required")

package respcache

import "errors"

// ErrPrefixRequired is returned when no key prefix is provided.
var ErrPrefixRequired = errors.New("respcache: key prefix is required")

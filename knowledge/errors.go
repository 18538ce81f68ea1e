package knowledge

import "errors"

var (
	// ErrPathRequired is returned when a knowledge file path is not provided.
	ErrPathRequired = errors.New("knowledge file path required")
)

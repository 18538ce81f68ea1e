package embedding

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrMalformedVector indicates a cached vector payload that cannot be decoded.
	ErrMalformedVector = errors.New("malformed vector payload")

	// ErrDimensionMismatch indicates a vector whose dimension disagrees with
	// the dimension detected at the first successful embedding call.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

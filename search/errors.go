package search

import "errors"

var (
	// ErrKnowledgeStoreRequired is returned when no knowledge store is provided.
	ErrKnowledgeStoreRequired = errors.New("search: knowledge store is required")

	// ErrVectorIndexRequired is returned when no vector index is provided.
	ErrVectorIndexRequired = errors.New("search: vector index is required")
)

package vector

import "errors"

var (
	// ErrCacheRequired is returned when an embedding cache is not provided.
	ErrCacheRequired = errors.New("embedding cache required")

	// ErrPathRequired is returned when an index path is not provided.
	ErrPathRequired = errors.New("index path required")

	// ErrNoRecords indicates a build was requested with no records to index.
	ErrNoRecords = errors.New("no records to index")

	// ErrNotPersisted indicates no usable persisted generation exists.
	ErrNotPersisted = errors.New("no persisted index found")

	// ErrCorruptIndex indicates persisted artifacts that disagree with each
	// other and cannot be restored.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
)

package service

import "errors"

var (
	// ErrStoreRequired is returned when no coordination store is provided.
	ErrStoreRequired = errors.New("service: coordination store is required")

	// ErrKnowledgeRequired is returned when no knowledge store is provided.
	ErrKnowledgeRequired = errors.New("service: knowledge store is required")

	// ErrIndexRequired is returned when no vector index is provided.
	ErrIndexRequired = errors.New("service: vector index is required")

	// ErrEngineRequired is returned when no hybrid engine is provided.
	ErrEngineRequired = errors.New("service: hybrid engine is required")

	// ErrLimiterRequired is returned when a nil limiter is injected.
	ErrLimiterRequired = errors.New("service: rate limiter must not be nil")

	// ErrLedgerRequired is returned when a nil ledger is injected.
	ErrLedgerRequired = errors.New("service: budget ledger must not be nil")

	// ErrNoKnowledge is returned when a rebuild is requested but the
	// knowledge base holds no records.
	ErrNoKnowledge = errors.New("service: knowledge base is empty")

	// ErrRebuildInProgress is returned when an index rebuild is already
	// running.
	ErrRebuildInProgress = errors.New("service: index rebuild already in progress")
)

// Refusal is a policy denial carrying a stable user-safe message. It is an
// expected outcome, not a system failure.
type Refusal struct {
	Message string
}

func (r *Refusal) Error() string {
	return r.Message
}

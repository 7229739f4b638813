package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The document gateway and typed
// stores return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document or entity does not exist in the store
// - ErrConflict: write lost to a concurrent writer
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrExhausted: transaction retries used up without committing
// - ErrUnavailable: backing store temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrExhausted    = errors.New("retries exhausted")
	ErrUnavailable  = errors.New("unavailable")
)

package documents

import "errors"

var (
	// ErrNotFound means no active record exists for the pair.
	ErrNotFound = errors.New("document not found")
	// ErrStorage wraps persistence-layer failures. These operations never
	// retry on their own; Upsert is idempotent, so the caller may.
	ErrStorage = errors.New("document storage error")
)

const (
	ErrorCodeNotFound = "NOT_FOUND"
	ErrorCodeStorage  = "STORAGE_ERROR"
)

package documents

import "context"

// UpsertParams carries everything Upsert writes. There is no separate
// insert/update API; the single mutation path keeps the operation
// idempotent regardless of caller state.
type UpsertParams struct {
	ThesisID       int64
	TypeID         int64
	Content        []byte
	AuthorID       int64
	DocumentNumber string
	Status         Status
}

// Repo defines persistence operations for pipeline documents.
type Repo interface {
	// GetByThesisAndType returns the active record for the pair, or
	// ErrNotFound.
	GetByThesisAndType(ctx context.Context, thesisID, typeID int64) (Record, error)
	// ListByThesis returns all active records for a thesis.
	ListByThesis(ctx context.Context, thesisID int64) ([]Record, error)
	// Upsert inserts the record on first save and overwrites content,
	// number, status, author and updated_at in place on every later save.
	// Calling it twice with identical arguments leaves the same final row.
	Upsert(ctx context.Context, p UpsertParams) (Record, error)
	// EnsureInProgress creates an empty IN_PROGRESS record if none exists.
	// A READY record is never downgraded; any other existing state is
	// normalized to IN_PROGRESS.
	EnsureInProgress(ctx context.Context, thesisID, typeID, authorID int64) error
}

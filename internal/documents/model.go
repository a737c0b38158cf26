package documents

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a saved document.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
)

// StatusOf derives the status of a record from its document number:
// READY iff a non-blank number has been assigned. This is the only way a
// status value is ever produced, so the invariant holds at rest.
func StatusOf(documentNumber string) Status {
	if strings.TrimSpace(documentNumber) == "" {
		return StatusInProgress
	}
	return StatusReady
}

// Record is one generated document for a (thesis, type) pair. At most one
// active record exists per pair; a pair with no record at all is the
// implicit NOT_STARTED state, handled by the pipeline package.
type Record struct {
	ID             string
	ThesisID       int64
	TypeID         int64
	Content        []byte
	DocumentNumber string
	Status         Status
	AuthorID       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

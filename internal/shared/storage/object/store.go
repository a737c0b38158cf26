package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for archiving and retrieving artifacts.
// Keys are caller-chosen and deterministic, so re-saving the same key is an
// overwrite, never a duplicate.
type ObjectStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

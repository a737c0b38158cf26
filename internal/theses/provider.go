package theses

import (
	"context"
	"errors"
)

// ErrNotFound means no thesis exists with the given ID.
var ErrNotFound = errors.New("thesis not found")

// Provider supplies thesis and commission facts to the pipeline. Read-only.
type Provider interface {
	GetThesis(ctx context.Context, id int64) (Thesis, error)
	ListCommission(ctx context.Context, thesisID int64) ([]CommissionMember, error)
}

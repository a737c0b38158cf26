package theses

import (
	"context"
	"sort"
	"sync"
)

// MemoryProvider is an in-memory Provider for dev mode and tests.
type MemoryProvider struct {
	mu      sync.RWMutex
	theses  map[int64]Thesis
	members map[int64][]CommissionMember
}

// NewMemoryProvider constructs an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		theses:  make(map[int64]Thesis),
		members: make(map[int64][]CommissionMember),
	}
}

// PutThesis stores or replaces a thesis.
func (p *MemoryProvider) PutThesis(t Thesis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theses[t.ID] = t
}

// PutCommission replaces the commission for a thesis.
func (p *MemoryProvider) PutCommission(thesisID int64, members []CommissionMember) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sorted := append([]CommissionMember(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	p.members[thesisID] = sorted
}

// GetThesis returns the thesis metadata by ID.
func (p *MemoryProvider) GetThesis(ctx context.Context, id int64) (Thesis, error) {
	if err := ctx.Err(); err != nil {
		return Thesis{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.theses[id]
	if !ok {
		return Thesis{}, ErrNotFound
	}
	return t, nil
}

// ListCommission returns the commission members for a thesis in seat order.
func (p *MemoryProvider) ListCommission(ctx context.Context, thesisID int64) ([]CommissionMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]CommissionMember(nil), p.members[thesisID]...), nil
}

var _ Provider = (*MemoryProvider)(nil)

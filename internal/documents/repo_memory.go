package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type pairKey struct {
	thesisID int64
	typeID   int64
}

// MemoryRepo is an in-memory implementation of Repo, used in dev mode and
// tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	data   map[pairKey]Record
	writes int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[pairKey]Record)}
}

// GetByThesisAndType returns the active record for the pair.
func (r *MemoryRepo) GetByThesisAndType(ctx context.Context, thesisID, typeID int64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[pairKey{thesisID, typeID}]
	if !ok || !rec.Active {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// ListByThesis returns all active records for a thesis, ordered by type.
func (r *MemoryRepo) ListByThesis(ctx context.Context, thesisID int64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for key, rec := range r.data {
		if key.thesisID == thesisID && rec.Active {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out, nil
}

// Upsert writes the single record for the pair.
func (r *MemoryRepo) Upsert(ctx context.Context, p UpsertParams) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++

	now := time.Now().UTC()
	key := pairKey{p.ThesisID, p.TypeID}
	rec, ok := r.data[key]
	if !ok || !rec.Active {
		rec = Record{
			ID:        uuid.NewString(),
			ThesisID:  p.ThesisID,
			TypeID:    p.TypeID,
			CreatedAt: now,
			Active:    true,
		}
	}
	rec.Content = append([]byte(nil), p.Content...)
	rec.DocumentNumber = p.DocumentNumber
	rec.Status = p.Status
	rec.AuthorID = p.AuthorID
	rec.UpdatedAt = now
	r.data[key] = rec
	return cloneRecord(rec), nil
}

// EnsureInProgress creates an empty record or normalizes an existing one.
func (r *MemoryRepo) EnsureInProgress(ctx context.Context, thesisID, typeID, authorID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := pairKey{thesisID, typeID}
	rec, ok := r.data[key]
	if !ok || !rec.Active {
		r.writes++
		r.data[key] = Record{
			ID:        uuid.NewString(),
			ThesisID:  thesisID,
			TypeID:    typeID,
			Status:    StatusInProgress,
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
			Active:    true,
		}
		return nil
	}
	if rec.Status == StatusReady {
		return nil
	}
	if rec.Status != StatusInProgress {
		r.writes++
		rec.Status = StatusInProgress
		rec.UpdatedAt = now
		r.data[key] = rec
	}
	return nil
}

// WriteCount reports how many mutations have been applied. Tests use it to
// assert that failed saves perform no write.
func (r *MemoryRepo) WriteCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

func cloneRecord(rec Record) Record {
	rec.Content = append([]byte(nil), rec.Content...)
	return rec
}

var _ Repo = (*MemoryRepo)(nil)

package documents

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. Content blobs are stored
// base64-encoded in a text column.
type PGRepo struct {
	DB *sql.DB
}

const recordColumns = `id, thesis_id, type_id, content, document_number, status, author_id, created_at, updated_at, is_active`

// GetByThesisAndType returns the active record for the pair.
func (r *PGRepo) GetByThesisAndType(ctx context.Context, thesisID, typeID int64) (Record, error) {
	const query = `
SELECT ` + recordColumns + `
FROM thesis_documents
WHERE thesis_id = $1 AND type_id = $2 AND is_active
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, thesisID, typeID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, storageErr("get document", err)
	}
	return rec, nil
}

// ListByThesis returns all active records for a thesis, ordered by type.
func (r *PGRepo) ListByThesis(ctx context.Context, thesisID int64) ([]Record, error) {
	const query = `
SELECT ` + recordColumns + `
FROM thesis_documents
WHERE thesis_id = $1 AND is_active
ORDER BY type_id`
	rows, err := r.DB.QueryContext(ctx, query, thesisID)
	if err != nil {
		return nil, storageErr("list documents", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storageErr("scan document", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list documents", err)
	}
	return out, nil
}

// Upsert writes the single active row for the pair. The partial unique
// index on (thesis_id, type_id) WHERE is_active makes concurrent calls for
// the same pair converge on one row, last committed write wins.
func (r *PGRepo) Upsert(ctx context.Context, p UpsertParams) (Record, error) {
	const query = `
INSERT INTO thesis_documents (id, thesis_id, type_id, content, document_number, status, author_id, created_at, updated_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, TRUE)
ON CONFLICT (thesis_id, type_id) WHERE is_active
DO UPDATE SET
    content = EXCLUDED.content,
    document_number = EXCLUDED.document_number,
    status = EXCLUDED.status,
    author_id = EXCLUDED.author_id,
    updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`

	now := time.Now().UTC()
	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.DB.QueryRowContext(
		ctx,
		query,
		uuid.NewString(),
		p.ThesisID,
		p.TypeID,
		base64.StdEncoding.EncodeToString(p.Content),
		nullString(p.DocumentNumber),
		string(p.Status),
		nullInt64(p.AuthorID),
		now,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return Record{}, storageErr("upsert document", err)
	}

	return Record{
		ID:             id,
		ThesisID:       p.ThesisID,
		TypeID:         p.TypeID,
		Content:        p.Content,
		DocumentNumber: p.DocumentNumber,
		Status:         p.Status,
		AuthorID:       p.AuthorID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		Active:         true,
	}, nil
}

// EnsureInProgress creates an empty record or normalizes an existing one.
// A READY record is left untouched.
func (r *PGRepo) EnsureInProgress(ctx context.Context, thesisID, typeID, authorID int64) error {
	existing, err := r.GetByThesisAndType(ctx, thesisID, typeID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		const insert = `
INSERT INTO thesis_documents (id, thesis_id, type_id, content, document_number, status, author_id, created_at, updated_at, is_active)
VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $7, TRUE)
ON CONFLICT (thesis_id, type_id) WHERE is_active DO NOTHING`
		now := time.Now().UTC()
		_, err := r.DB.ExecContext(ctx, insert,
			uuid.NewString(), thesisID, typeID, "", string(StatusInProgress), nullInt64(authorID), now)
		if err != nil {
			return storageErr("ensure in progress", err)
		}
		return nil
	}

	if existing.Status == StatusReady {
		return nil
	}
	if existing.Status == StatusInProgress {
		return nil
	}

	const normalize = `
UPDATE thesis_documents
SET status = $1, updated_at = $2
WHERE thesis_id = $3 AND type_id = $4 AND is_active`
	_, err = r.DB.ExecContext(ctx, normalize, string(StatusInProgress), time.Now().UTC(), thesisID, typeID)
	if err != nil {
		return storageErr("ensure in progress", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec      Record
		content  string
		number   sql.NullString
		status   string
		authorID sql.NullInt64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ThesisID,
		&rec.TypeID,
		&content,
		&number,
		&status,
		&authorID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.Active,
	); err != nil {
		return Record{}, err
	}
	decoded, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return Record{}, fmt.Errorf("decode content: %w", err)
	}
	rec.Content = decoded
	if number.Valid {
		rec.DocumentNumber = number.String
	}
	rec.Status = Status(status)
	if authorID.Valid {
		rec.AuthorID = authorID.Int64
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

var _ Repo = (*PGRepo)(nil)

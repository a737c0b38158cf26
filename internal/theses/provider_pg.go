package theses

import (
	"context"
	"database/sql"
	"errors"
)

// PGProvider implements Provider using Postgres.
type PGProvider struct {
	DB *sql.DB
}

// GetThesis returns the thesis metadata by ID.
func (p *PGProvider) GetThesis(ctx context.Context, id int64) (Thesis, error) {
	const query = `
SELECT id, title, student_name, student_index, study_program, cycle, mentor_name, mentor_title, defense_at, defense_room
FROM theses
WHERE id = $1`
	var (
		t           Thesis
		mentorTitle sql.NullString
		defenseAt   sql.NullTime
		defenseRoom sql.NullString
	)
	err := p.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.StudentName,
		&t.StudentIndex,
		&t.StudyProgram,
		&t.Cycle,
		&t.MentorName,
		&mentorTitle,
		&defenseAt,
		&defenseRoom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Thesis{}, ErrNotFound
		}
		return Thesis{}, err
	}
	if mentorTitle.Valid {
		t.MentorTitle = mentorTitle.String
	}
	if defenseAt.Valid {
		t.DefenseAt = &defenseAt.Time
	}
	if defenseRoom.Valid {
		t.DefenseRoom = defenseRoom.String
	}
	return t, nil
}

// ListCommission returns the commission members for a thesis in seat order.
func (p *PGProvider) ListCommission(ctx context.Context, thesisID int64) ([]CommissionMember, error) {
	const query = `
SELECT thesis_id, position, role, title, name
FROM commission_members
WHERE thesis_id = $1
ORDER BY position`
	rows, err := p.DB.QueryContext(ctx, query, thesisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommissionMember
	for rows.Next() {
		var m CommissionMember
		var title sql.NullString
		if err := rows.Scan(&m.ThesisID, &m.Position, &m.Role, &title, &m.Name); err != nil {
			return nil, err
		}
		if title.Valid {
			m.Title = title.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ Provider = (*PGProvider)(nil)

package theses

import "time"

// Thesis is the read-only slice of thesis metadata the document pipeline
// renders from. The record-keeping screens that maintain it live elsewhere.
type Thesis struct {
	ID           int64
	Title        string
	StudentName  string
	StudentIndex string
	StudyProgram string
	Cycle        int
	MentorName   string
	MentorTitle  string
	DefenseAt    *time.Time
	DefenseRoom  string
}

// CommissionMember is one member of a thesis defense commission, ordered by
// Position.
type CommissionMember struct {
	ThesisID int64
	Position int
	Role     string
	Title    string
	Name     string
}

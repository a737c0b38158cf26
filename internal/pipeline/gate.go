package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
)

// StateNotStarted is the implicit state of a stage with no saved record.
// Saved records carry documents.StatusInProgress or documents.StatusReady.
const StateNotStarted = "NOT_STARTED"

// prerequisites declares which stages must be READY before a stage may be
// started. The relation is linear except for the defense notice, which
// quotes the protocol numbers of both decisions and therefore needs both.
var prerequisites = map[doctypes.Stage][]doctypes.Stage{
	doctypes.StageThesisApproval:      nil,
	doctypes.StageCommissionFormation: {doctypes.StageThesisApproval},
	doctypes.StageDefenseNotice:       {doctypes.StageThesisApproval, doctypes.StageCommissionFormation},
	doctypes.StageDefenseReport:       {doctypes.StageDefenseNotice},
	doctypes.StageExamReport:          {doctypes.StageDefenseReport},
	doctypes.StageCycleCertificate:    {doctypes.StageExamReport},
}

// Prerequisites returns the declared prerequisite stages of a stage.
func Prerequisites(stage doctypes.Stage) []doctypes.Stage {
	return append([]doctypes.Stage(nil), prerequisites[stage]...)
}

// Gate decides whether a pipeline stage may be started or edited for a
// thesis. Every check reads the backing store; records are never cached.
type Gate struct {
	Docs documents.Repo
}

// IsBlocked reports whether the stage is blocked for the thesis, and which
// prerequisite types are missing or not yet READY.
func (g *Gate) IsBlocked(ctx context.Context, thesisID int64, stage doctypes.Stage) (bool, []doctypes.Descriptor, error) {
	var missing []doctypes.Descriptor
	for _, pre := range prerequisites[stage] {
		desc, err := doctypes.ByStage(pre)
		if err != nil {
			return false, nil, err
		}
		rec, err := g.Docs.GetByThesisAndType(ctx, thesisID, desc.ID)
		if err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				missing = append(missing, desc)
				continue
			}
			return false, nil, err
		}
		if rec.Status != documents.StatusReady {
			missing = append(missing, desc)
		}
	}
	return len(missing) > 0, missing, nil
}

// StageStatus is the per-stage view of a thesis pipeline.
type StageStatus struct {
	Descriptor     doctypes.Descriptor
	State          string
	DocumentNumber string
	Blocked        bool
	UpdatedAt      *time.Time
}

// Summary reports the state of every pipeline stage for a thesis in
// catalog order, with the blocked flag the UI uses to gray out downstream
// actions before they are attempted.
func (g *Gate) Summary(ctx context.Context, thesisID int64) ([]StageStatus, error) {
	recs, err := g.Docs.ListByThesis(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	byType := make(map[int64]documents.Record, len(recs))
	for _, rec := range recs {
		byType[rec.TypeID] = rec
	}

	ready := make(map[doctypes.Stage]bool)
	var out []StageStatus
	for _, desc := range doctypes.ListOrdered() {
		st := StageStatus{Descriptor: desc, State: StateNotStarted}
		if rec, ok := byType[desc.ID]; ok {
			st.State = string(rec.Status)
			st.DocumentNumber = rec.DocumentNumber
			updated := rec.UpdatedAt
			st.UpdatedAt = &updated
		}
		for _, pre := range prerequisites[desc.Stage] {
			if !ready[pre] {
				st.Blocked = true
				break
			}
		}
		ready[desc.Stage] = st.State == string(documents.StatusReady)
		out = append(out, st)
	}
	return out, nil
}

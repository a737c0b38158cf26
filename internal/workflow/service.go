package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnelahh/eDiploma-app-sub000/internal/docnumber"
	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/notify"
	"github.com/arnelahh/eDiploma-app-sub000/internal/pipeline"
	"github.com/arnelahh/eDiploma-app-sub000/internal/render"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/metrics"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/telemetry"
	"github.com/arnelahh/eDiploma-app-sub000/internal/theses"
)

// Service orchestrates a document save: gate check, number assignment,
// rendering and the single persistence write. Identity is always passed in
// explicitly; there is no ambient session state.
type Service struct {
	Docs     documents.Repo
	Gate     *pipeline.Gate
	Theses   theses.Provider
	Renderer *render.Renderer
	Notify   notify.Client
	// Now is injectable so tests can pin the year used in number suffixes.
	Now func() time.Time
}

// SaveRequest carries one document save. Type accepts a stage key or the
// legacy display name. NumberDigits is the user-editable part of the
// protocol number; blank means no number assigned yet.
type SaveRequest struct {
	ThesisID     int64
	Type         string
	AuthorID     int64
	NumberDigits string
	Fields       map[string]string
	RequestID    string
}

// SaveResult is the stored record plus its resolved type.
type SaveResult struct {
	Record     documents.Record
	Descriptor doctypes.Descriptor
}

// Save runs the pipeline for one document: resolve type, consult the gate,
// validate and format the number, render, persist. Steps are strictly
// sequential; validation failures happen before the write, and there is
// exactly one storage write per call.
func (s *Service) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	desc, err := doctypes.Resolve(req.Type)
	if err != nil {
		return SaveResult{}, err
	}

	blocked, missing, err := s.Gate.IsBlocked(ctx, req.ThesisID, desc.Stage)
	if err != nil {
		return SaveResult{}, err
	}
	if blocked {
		return SaveResult{}, &BlockedError{Stage: desc, Missing: missing}
	}

	now := s.now()
	documentNumber := ""
	if digits := strings.TrimSpace(req.NumberDigits); digits != "" {
		documentNumber, err = docnumber.Format(desc.NumberPrefix, digits, now.Year())
		if err != nil {
			return SaveResult{}, err
		}
	}
	status := documents.StatusOf(documentNumber)

	fields, err := s.buildFields(ctx, req, desc, documentNumber, now)
	if err != nil {
		return SaveResult{}, err
	}

	renderStart := metrics.NowMillis()
	artifact, err := s.Renderer.Render(ctx, desc.TemplateID, fields)
	if err != nil {
		return SaveResult{}, err
	}
	metrics.ObserveRenderDurationMs(metrics.NowMillis() - renderStart)

	rec, err := s.Docs.Upsert(ctx, documents.UpsertParams{
		ThesisID:       req.ThesisID,
		TypeID:         desc.ID,
		Content:        artifact,
		AuthorID:       req.AuthorID,
		DocumentNumber: documentNumber,
		Status:         status,
	})
	if err != nil {
		return SaveResult{}, err
	}

	if status == documents.StatusReady && s.Notify != nil {
		s.notifyReady(ctx, req, desc, rec)
	}

	return SaveResult{Record: rec, Descriptor: desc}, nil
}

// Start opens a stage for editing: gate check, then an idempotent
// EnsureInProgress. A READY document is never downgraded.
func (s *Service) Start(ctx context.Context, thesisID int64, typeKey string, authorID int64) (doctypes.Descriptor, error) {
	desc, err := doctypes.Resolve(typeKey)
	if err != nil {
		return doctypes.Descriptor{}, err
	}
	blocked, missing, err := s.Gate.IsBlocked(ctx, thesisID, desc.Stage)
	if err != nil {
		return doctypes.Descriptor{}, err
	}
	if blocked {
		return doctypes.Descriptor{}, &BlockedError{Stage: desc, Missing: missing}
	}
	if err := s.Docs.EnsureInProgress(ctx, thesisID, desc.ID, authorID); err != nil {
		return doctypes.Descriptor{}, err
	}
	return desc, nil
}

// Get returns the stored record for a stage.
func (s *Service) Get(ctx context.Context, thesisID int64, typeKey string) (SaveResult, error) {
	desc, err := doctypes.Resolve(typeKey)
	if err != nil {
		return SaveResult{}, err
	}
	rec, err := s.Docs.GetByThesisAndType(ctx, thesisID, desc.ID)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Record: rec, Descriptor: desc}, nil
}

// Summary returns the per-stage pipeline view for a thesis.
func (s *Service) Summary(ctx context.Context, thesisID int64) ([]pipeline.StageStatus, error) {
	return s.Gate.Summary(ctx, thesisID)
}

// buildFields assembles the render field map: thesis and commission facts
// from the provider, protocol numbers of earlier documents, caller-supplied
// fields, then the computed number and its character boxes. Later sources
// win on key collisions.
func (s *Service) buildFields(ctx context.Context, req SaveRequest, desc doctypes.Descriptor, documentNumber string, now time.Time) (map[string]string, error) {
	fields := make(map[string]string)

	thesis, err := s.Theses.GetThesis(ctx, req.ThesisID)
	if err != nil {
		return nil, fmt.Errorf("load thesis %d: %w", req.ThesisID, err)
	}
	fields["studentName"] = thesis.StudentName
	fields["studentIndex"] = thesis.StudentIndex
	fields["thesisTitle"] = thesis.Title
	fields["studyProgram"] = thesis.StudyProgram
	fields["cycle"] = strconv.Itoa(thesis.Cycle)
	fields["mentorName"] = thesis.MentorName
	fields["mentorTitle"] = thesis.MentorTitle
	fields["defenseRoom"] = thesis.DefenseRoom
	if thesis.DefenseAt != nil {
		fields["defenseDate"] = thesis.DefenseAt.Format("02.01.2006.")
		fields["defenseTime"] = thesis.DefenseAt.Format("15:04")
	}

	members, err := s.Theses.ListCommission(ctx, req.ThesisID)
	if err != nil {
		return nil, fmt.Errorf("load commission for thesis %d: %w", req.ThesisID, err)
	}
	for i, m := range members {
		key := "member" + strconv.Itoa(i+1)
		fields[key+"Name"] = m.Name
		fields[key+"Title"] = m.Title
		fields[key+"Role"] = m.Role
	}

	if err := s.addPriorNumbers(ctx, req.ThesisID, fields); err != nil {
		return nil, err
	}

	for k, v := range req.Fields {
		fields[k] = v
	}

	fields["documentNumber"] = documentNumber
	fields["issueDate"] = now.Format("02.01.2006.")

	if desc.NumberBoxes {
		boxes, err := render.BoxFields(documentNumber)
		if err != nil {
			return nil, err
		}
		for k, v := range boxes {
			fields[k] = v
		}
	}
	return fields, nil
}

// priorNumberFields maps earlier stages to the field name their protocol
// number is quoted under in later templates.
var priorNumberFields = map[doctypes.Stage]string{
	doctypes.StageThesisApproval:      "approvalNumber",
	doctypes.StageCommissionFormation: "commissionNumber",
	doctypes.StageDefenseNotice:       "noticeNumber",
	doctypes.StageDefenseReport:       "reportNumber",
}

func (s *Service) addPriorNumbers(ctx context.Context, thesisID int64, fields map[string]string) error {
	recs, err := s.Docs.ListByThesis(ctx, thesisID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.DocumentNumber == "" {
			continue
		}
		desc, err := doctypes.ByID(rec.TypeID)
		if err != nil {
			continue
		}
		if name, ok := priorNumberFields[desc.Stage]; ok {
			fields[name] = rec.DocumentNumber
		}
	}
	return nil
}

func (s *Service) notifyReady(ctx context.Context, req SaveRequest, desc doctypes.Descriptor, rec documents.Record) {
	msg := notify.Message{
		MessageID:      uuid.NewString(),
		ThesisID:       rec.ThesisID,
		Stage:          string(desc.Stage),
		DocumentNumber: rec.DocumentNumber,
		RequestID:      req.RequestID,
		EnqueuedAt:     s.now().UTC().Format(time.RFC3339),
		Version:        1,
	}
	// Delivery is best effort; a queue failure never fails the save.
	if err := s.Notify.DocumentReady(ctx, msg); err != nil {
		telemetry.Error("notify.enqueue_failed", map[string]any{
			"thesis_id":  rec.ThesisID,
			"stage":      string(desc.Stage),
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsInvalidNumber reports whether err is the four-digit validation failure.
func IsInvalidNumber(err error) bool {
	return errors.Is(err, docnumber.ErrInvalidDigits)
}

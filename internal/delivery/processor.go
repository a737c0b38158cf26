package delivery

import (
	"bytes"
	"context"
	"fmt"

	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/notify"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/object"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/telemetry"
)

// Processor consumes READY notifications and archives the document
// artifact to durable object storage for downstream delivery.
type Processor struct {
	Docs  documents.Repo
	Store object.ObjectStore
}

// Process handles one notification. Re-delivery is safe: the archive key is
// deterministic per (thesis, stage), so a repeat just overwrites the same
// object with identical bytes.
func (p *Processor) Process(ctx context.Context, msg notify.Message) error {
	desc, err := doctypes.ByStage(doctypes.Stage(msg.Stage))
	if err != nil {
		return fmt.Errorf("notification for unknown stage %q: %w", msg.Stage, err)
	}

	rec, err := p.Docs.GetByThesisAndType(ctx, msg.ThesisID, desc.ID)
	if err != nil {
		return fmt.Errorf("load document thesis=%d stage=%s: %w", msg.ThesisID, msg.Stage, err)
	}
	if rec.Status != documents.StatusReady {
		// The row may have been cleared administratively since enqueue.
		telemetry.Info("delivery.skip_not_ready", map[string]any{
			"thesis_id": msg.ThesisID,
			"stage":     msg.Stage,
			"status":    string(rec.Status),
		})
		return nil
	}

	key := ArchiveKey(msg.ThesisID, desc.Stage)
	if err := p.Store.Save(ctx, key, "text/html; charset=utf-8", bytes.NewReader(rec.Content)); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}

	telemetry.Info("delivery.archived", map[string]any{
		"thesis_id":       msg.ThesisID,
		"stage":           msg.Stage,
		"document_number": rec.DocumentNumber,
		"key":             key,
		"size_bytes":      len(rec.Content),
	})
	return nil
}

// ArchiveKey is the deterministic object key for a document artifact.
func ArchiveKey(thesisID int64, stage doctypes.Stage) string {
	return fmt.Sprintf("theses/%d/%s.html", thesisID, stage)
}

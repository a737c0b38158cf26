package delivery

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/notify"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/storage/object/local"
)

func TestProcessArchivesReadyDocument(t *testing.T) {
	ctx := context.Background()
	repo := documents.NewMemoryRepo()
	store := local.New(t.TempDir())

	desc, err := doctypes.ByStage(doctypes.StageCommissionFormation)
	if err != nil {
		t.Fatalf("ByStage: %v", err)
	}
	if _, err := repo.Upsert(ctx, documents.UpsertParams{
		ThesisID:       7,
		TypeID:         desc.ID,
		Content:        []byte("<html>rjesenje</html>"),
		DocumentNumber: "11-403-103-1295/25",
		Status:         documents.StatusReady,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	p := &Processor{Docs: repo, Store: store}
	msg := notify.Message{ThesisID: 7, Stage: string(doctypes.StageCommissionFormation)}
	if err := p.Process(ctx, msg); err != nil {
		t.Fatalf("Process: %v", err)
	}

	rc, err := store.Open(ctx, ArchiveKey(7, doctypes.StageCommissionFormation))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	archived, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(archived) != "<html>rjesenje</html>" {
		t.Fatalf("unexpected archive content %q", archived)
	}

	// Re-delivery overwrites the same key with the same bytes.
	if err := p.Process(ctx, msg); err != nil {
		t.Fatalf("Process redelivery: %v", err)
	}
}

func TestProcessSkipsNonReadyDocument(t *testing.T) {
	ctx := context.Background()
	repo := documents.NewMemoryRepo()
	dir := t.TempDir()
	store := local.New(dir)

	desc, err := doctypes.ByStage(doctypes.StageThesisApproval)
	if err != nil {
		t.Fatalf("ByStage: %v", err)
	}
	if _, err := repo.Upsert(ctx, documents.UpsertParams{
		ThesisID: 7,
		TypeID:   desc.ID,
		Content:  []byte("<html>draft</html>"),
		Status:   documents.StatusInProgress,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	p := &Processor{Docs: repo, Store: store}
	if err := p.Process(ctx, notify.Message{ThesisID: 7, Stage: string(doctypes.StageThesisApproval)}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if _, err := store.Open(ctx, ArchiveKey(7, doctypes.StageThesisApproval)); err == nil {
		t.Fatal("draft must not be archived")
	}
}

func TestProcessUnknownStage(t *testing.T) {
	p := &Processor{Docs: documents.NewMemoryRepo(), Store: local.New(t.TempDir())}
	err := p.Process(context.Background(), notify.Message{ThesisID: 7, Stage: "diploma_supplement"})
	if !errors.Is(err, doctypes.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestProcessMissingDocumentFails(t *testing.T) {
	p := &Processor{Docs: documents.NewMemoryRepo(), Store: local.New(t.TempDir())}
	err := p.Process(context.Background(), notify.Message{ThesisID: 7, Stage: string(doctypes.StageThesisApproval)})
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestArchiveKeyDeterministic(t *testing.T) {
	a := ArchiveKey(7, doctypes.StageCycleCertificate)
	b := ArchiveKey(7, doctypes.StageCycleCertificate)
	if a != b || a != "theses/7/cycle_certificate.html" {
		t.Fatalf("unexpected key %q", a)
	}
}

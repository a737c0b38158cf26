package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRenderDeterministic(t *testing.T) {
	r := New(nil)
	fields := map[string]string{
		"studentName":    "Amina Hodžić",
		"thesisTitle":    "Analiza distribuiranih sistema",
		"documentNumber": "11-403-103-1295/25",
	}

	first, err := r.Render(context.Background(), "rjesenje_komisija", fields)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := r.Render(context.Background(), "rjesenje_komisija", fields)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical template and fields must produce byte-identical output")
	}
	if !bytes.Contains(first, []byte("Amina Hodžić")) {
		t.Fatal("candidate name not substituted")
	}
	if !bytes.Contains(first, []byte("11-403-103-1295/25")) {
		t.Fatal("document number not substituted")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := New(nil)
	if _, err := r.Render(context.Background(), "nepostojeci", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestRenderLeavesUnresolvedPlaceholdersVerbatim(t *testing.T) {
	r := New(nil)
	out, err := r.Render(context.Background(), "rjesenje_komisija", map[string]string{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(out, []byte("{{studentName}}")) {
		t.Fatal("unresolved placeholder must survive verbatim")
	}
}

func TestSubstituteSinglePass(t *testing.T) {
	// A value containing placeholder syntax must not be rescanned.
	tmpl := []byte("<p>{{a}} i {{b}}</p>")
	out := substitute(tmpl, map[string]string{
		"a": "{{b}}",
		"b": "konacno",
	})
	if got := string(out); got != "<p>{{b}} i konacno</p>" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestSubstituteUnterminatedPlaceholder(t *testing.T) {
	tmpl := []byte("<p>{{a}} rep {{nezavrsen</p>")
	out := substitute(tmpl, map[string]string{"a": "x"})
	if got := string(out); got != "<p>x rep {{nezavrsen</p>" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestBoxFieldsPadding(t *testing.T) {
	fields, err := BoxFields("0042/25")
	if err != nil {
		t.Fatalf("BoxFields: %v", err)
	}
	if len(fields) != BoxCount {
		t.Fatalf("expected %d fields, got %d", BoxCount, len(fields))
	}
	if fields["char0"] != "0" || fields["char4"] != "/" || fields["char6"] != "5" {
		t.Fatalf("unexpected expansion: %v", fields)
	}
	if fields["char7"] != "" || fields["char17"] != "" {
		t.Fatal("trailing boxes must be empty")
	}
}

func TestBoxFieldsCountsRunesNotBytes(t *testing.T) {
	// 18 runes, more than 18 bytes.
	value := strings.Repeat("č", BoxCount)
	fields, err := BoxFields(value)
	if err != nil {
		t.Fatalf("BoxFields: %v", err)
	}
	if fields["char17"] != "č" {
		t.Fatalf("unexpected last box: %q", fields["char17"])
	}
}

func TestBoxFieldsOverflow(t *testing.T) {
	if _, err := BoxFields(strings.Repeat("x", BoxCount+1)); !errors.Is(err, ErrBoxOverflow) {
		t.Fatalf("expected ErrBoxOverflow, got %v", err)
	}
}

func TestCertificateTemplateFillsBoxes(t *testing.T) {
	r := New(nil)
	boxes, err := BoxFields("11-403-105-0042/25")
	if err != nil {
		t.Fatalf("BoxFields: %v", err)
	}
	fields := map[string]string{
		"studentName": "Amina Hodžić",
	}
	for k, v := range boxes {
		fields[k] = v
	}

	out, err := r.Render(context.Background(), "uvjerenje_ciklus", fields)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if bytes.Contains(out, []byte("{{char")) {
		t.Fatal("box placeholders left unresolved")
	}
}

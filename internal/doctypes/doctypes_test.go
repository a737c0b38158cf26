package doctypes

import (
	"errors"
	"testing"
)

func TestListOrderedIsSortedAndUnique(t *testing.T) {
	types := ListOrdered()
	if len(types) != 6 {
		t.Fatalf("expected 6 document types, got %d", len(types))
	}

	seenSort := make(map[int]bool)
	seenID := make(map[int64]bool)
	prev := -1
	for _, d := range types {
		if d.SortOrder <= prev {
			t.Fatalf("sort order not strictly increasing at %s", d.Stage)
		}
		prev = d.SortOrder
		if seenSort[d.SortOrder] {
			t.Fatalf("duplicate sort order %d", d.SortOrder)
		}
		seenSort[d.SortOrder] = true
		if seenID[d.ID] {
			t.Fatalf("duplicate type ID %d", d.ID)
		}
		seenID[d.ID] = true
		if d.RequiresNumber && d.NumberPrefix == "" {
			t.Fatalf("%s requires a number but has no prefix", d.Stage)
		}
	}
}

func TestListOrderedReturnsCopy(t *testing.T) {
	first := ListOrdered()
	first[0].Name = "mutated"
	if ListOrdered()[0].Name == "mutated" {
		t.Fatal("catalog must not be mutable through ListOrdered")
	}
}

func TestByNameLegacyKey(t *testing.T) {
	d, err := ByName("Rješenje o formiranju Komisije")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if d.Stage != StageCommissionFormation {
		t.Fatalf("expected commission formation, got %s", d.Stage)
	}
	if d.NumberPrefix != "11-403-103-" {
		t.Fatalf("unexpected prefix %s", d.NumberPrefix)
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName("Nepostojeći dokument"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestResolveAcceptsStageKeyAndName(t *testing.T) {
	byKey, err := Resolve("defense_notice")
	if err != nil {
		t.Fatalf("Resolve by key: %v", err)
	}
	byName, err := Resolve("Obavještenje o odbrani")
	if err != nil {
		t.Fatalf("Resolve by name: %v", err)
	}
	if byKey.ID != byName.ID {
		t.Fatalf("key and name resolved different types: %d vs %d", byKey.ID, byName.ID)
	}
}

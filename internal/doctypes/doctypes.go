package doctypes

import "errors"

// Stage identifies one document kind in the thesis pipeline.
type Stage string

const (
	StageThesisApproval      Stage = "thesis_approval"
	StageCommissionFormation Stage = "commission_formation"
	StageDefenseNotice       Stage = "defense_notice"
	StageDefenseReport       Stage = "defense_report"
	StageExamReport          Stage = "exam_report"
	StageCycleCertificate    Stage = "cycle_certificate"
)

// ErrUnknownType is returned when a lookup does not match a seeded type.
// Callers treat it as a configuration error, not a user error.
var ErrUnknownType = errors.New("unknown document type")

// Descriptor describes one document type in the pipeline catalog.
type Descriptor struct {
	ID             int64
	Stage          Stage
	Name           string
	RequiresNumber bool
	NumberPrefix   string
	SortOrder      int
	TemplateID     string
	NumberBoxes    bool
}

// catalog is the static seeded set of pipeline document types, ordered by
// SortOrder. The display names are the legacy string lookup keys.
var catalog = []Descriptor{
	{
		ID:             1,
		Stage:          StageThesisApproval,
		Name:           "Odluka o odobravanju teme",
		RequiresNumber: true,
		NumberPrefix:   "11-403-102-",
		SortOrder:      10,
		TemplateID:     "odluka_odobravanje",
	},
	{
		ID:             2,
		Stage:          StageCommissionFormation,
		Name:           "Rješenje o formiranju Komisije",
		RequiresNumber: true,
		NumberPrefix:   "11-403-103-",
		SortOrder:      20,
		TemplateID:     "rjesenje_komisija",
	},
	{
		ID:             3,
		Stage:          StageDefenseNotice,
		Name:           "Obavještenje o odbrani",
		RequiresNumber: true,
		NumberPrefix:   "11-403-104-",
		SortOrder:      30,
		TemplateID:     "obavjestenje_odbrana",
	},
	{
		ID:             4,
		Stage:          StageDefenseReport,
		Name:           "Zapisnik o odbrani",
		RequiresNumber: true,
		NumberPrefix:   "11-403-106-",
		SortOrder:      40,
		TemplateID:     "zapisnik_odbrana",
	},
	{
		ID:             5,
		Stage:          StageExamReport,
		Name:           "Izvještaj o završnom ispitu",
		RequiresNumber: true,
		NumberPrefix:   "11-403-107-",
		SortOrder:      50,
		TemplateID:     "izvjestaj_ispit",
	},
	{
		ID:             6,
		Stage:          StageCycleCertificate,
		Name:           "Uvjerenje o završenom ciklusu",
		RequiresNumber: true,
		NumberPrefix:   "11-403-105-",
		SortOrder:      60,
		TemplateID:     "uvjerenje_ciklus",
		NumberBoxes:    true,
	},
}

// ListOrdered returns all document types sorted by pipeline position.
// The returned slice is a copy; callers may not mutate the catalog.
func ListOrdered() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// ByName resolves a document type by its display name, the key legacy
// callers use.
func ByName(name string) (Descriptor, error) {
	for _, d := range catalog {
		if d.Name == name {
			return d, nil
		}
	}
	return Descriptor{}, ErrUnknownType
}

// ByStage resolves a document type by its stage identifier.
func ByStage(stage Stage) (Descriptor, error) {
	for _, d := range catalog {
		if d.Stage == stage {
			return d, nil
		}
	}
	return Descriptor{}, ErrUnknownType
}

// ByID resolves a document type by its numeric ID, as stored on rows.
func ByID(id int64) (Descriptor, error) {
	for _, d := range catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return Descriptor{}, ErrUnknownType
}

// Resolve accepts either a stage key or a display name. Handlers use stage
// keys; older callers still pass display names.
func Resolve(key string) (Descriptor, error) {
	if d, err := ByStage(Stage(key)); err == nil {
		return d, nil
	}
	return ByName(key)
}

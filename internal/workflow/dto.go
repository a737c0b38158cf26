package workflow

import (
	"time"

	"github.com/arnelahh/eDiploma-app-sub000/internal/docnumber"
	"github.com/arnelahh/eDiploma-app-sub000/internal/pipeline"
)

// saveRequestBody is the JSON body of a document save.
type saveRequestBody struct {
	NumberDigits string            `json:"numberDigits"`
	Fields       map[string]string `json:"fields"`
}

// DocumentResponse is the outward-facing representation of a saved document.
type DocumentResponse struct {
	Stage          string     `json:"stage"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	DocumentNumber string     `json:"documentNumber,omitempty"`
	NumberDigits   string     `json:"numberDigits,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

func toResponse(res SaveResult) DocumentResponse {
	digits, _ := docnumber.ExtractUserDigits(res.Record.DocumentNumber, res.Descriptor.NumberPrefix)
	updated := res.Record.UpdatedAt
	return DocumentResponse{
		Stage:          string(res.Descriptor.Stage),
		Name:           res.Descriptor.Name,
		Status:         string(res.Record.Status),
		DocumentNumber: res.Record.DocumentNumber,
		NumberDigits:   digits,
		UpdatedAt:      &updated,
	}
}

// StageResponse is one row of the pipeline summary.
type StageResponse struct {
	Stage          string     `json:"stage"`
	Name           string     `json:"name"`
	State          string     `json:"state"`
	DocumentNumber string     `json:"documentNumber,omitempty"`
	Blocked        bool       `json:"blocked"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

func toStageResponse(st pipeline.StageStatus) StageResponse {
	return StageResponse{
		Stage:          string(st.Descriptor.Stage),
		Name:           st.Descriptor.Name,
		State:          st.State,
		DocumentNumber: st.DocumentNumber,
		Blocked:        st.Blocked,
		UpdatedAt:      st.UpdatedAt,
	}
}

package workflow

import (
	"fmt"
	"strings"

	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
)

// BlockedError reports that a stage cannot be saved because prerequisite
// documents are not READY. It is raised before any write.
type BlockedError struct {
	Stage   doctypes.Descriptor
	Missing []doctypes.Descriptor
}

func (e *BlockedError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, d := range e.Missing {
		names = append(names, d.Name)
	}
	return fmt.Sprintf("%s is blocked by: %s", e.Stage.Name, strings.Join(names, ", "))
}

const (
	ErrorCodeUnknownType = "UNKNOWN_TYPE"
	ErrorCodeBlocked     = "BLOCKED"
	ErrorCodeInvalidNum  = "INVALID_NUMBER"
	ErrorCodeRender      = "RENDER_ERROR"
	ErrorCodeStorage     = "STORAGE_ERROR"
)

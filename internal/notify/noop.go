package notify

import (
	"context"

	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/telemetry"
)

// Noop logs notifications instead of publishing them. Used when no queue is
// configured, typically in dev mode.
type Noop struct{}

// DocumentReady logs the notification and drops it.
func (Noop) DocumentReady(ctx context.Context, msg Message) error {
	telemetry.Info("notify.noop", map[string]any{
		"thesis_id":       msg.ThesisID,
		"stage":           msg.Stage,
		"document_number": msg.DocumentNumber,
		"request_id":      msg.RequestID,
	})
	return nil
}

var _ Client = Noop{}

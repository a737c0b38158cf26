package notify

import "context"

// Client delivers READY-document notifications to downstream consumers.
// The pipeline has no knowledge of how delivery happens past the queue.
type Client interface {
	DocumentReady(ctx context.Context, msg Message) error
}

package ports

import "context"

// EventProcessor handles one raw inbound message end-to-end: parse the
// envelope, dispatch by event type, apply the projection mutation. A nil
// return means the message is done (including unknown event types); an error
// means the message should go to the dead-letter topic.
type EventProcessor interface {
	Process(ctx context.Context, raw []byte) error
}

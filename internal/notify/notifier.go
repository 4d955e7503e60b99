package notify

import (
	"context"
	"time"
)

// Kind distinguishes why a notification was requested. It doubles as the
// routing key suffix on the topic exchange.
type Kind string

const (
	KindAssignment Kind = "assignment"
	KindEscalation Kind = "escalation"
	KindPriority   Kind = "priority"
)

// Message is an outbound notification request. Delivery is at-most-once
// attempted and best effort; the owning transaction never waits on it.
type Message struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	ItemID        string    `json:"item_id"`
	TargetAgentID string    `json:"target_agent_id"`
	Reason        string    `json:"reason"`
	CC            []string  `json:"cc,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

// Notifier enqueues notification requests for a separate consumer.
type Notifier interface {
	Enqueue(ctx context.Context, msg Message) error
	Close() error
}

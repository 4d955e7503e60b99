package domain

import "time"

// AssignmentRecord is an immutable audit entry for a routing decision.
type AssignmentRecord struct {
	ID        string
	ItemID    string
	AgentID   string
	Timestamp time.Time
	Reason    string
	Priority  Priority
	Type      ItemType
}

// EscalationRecord is an immutable audit entry for an escalation step.
type EscalationRecord struct {
	ID              string
	ItemID          string
	EscalatedToID   string
	Timestamp       time.Time
	Level           int
	Reason          string
	Priority        Priority
	OriginalOwnerID string
}

// FailureRecord captures a dependency failure swallowed at an engine boundary.
type FailureRecord struct {
	ID        string
	Component string
	Message   string
	Detail    string
	Timestamp time.Time
	Actor     string
}

package domain

import "time"

// UnassignedQueue is the sentinel owner meaning "not yet assigned to a person".
const UnassignedQueue = "unassigned-queue"

// MaxEscalationLevel is the terminal depth of the escalation chain.
const MaxEscalationLevel = 3

// ItemStatus enumerates lifecycle states for work items.
type ItemStatus string

const (
	StatusNew             ItemStatus = "NEW"
	StatusInProgress      ItemStatus = "IN_PROGRESS"
	StatusPendingCustomer ItemStatus = "PENDING_CUSTOMER"
	StatusClosed          ItemStatus = "CLOSED"
)

// IsOpen reports whether the status counts toward an agent's open workload.
func (s ItemStatus) IsOpen() bool {
	return s != StatusClosed
}

// ItemType categorizes the kind of support request.
type ItemType string

const (
	ItemTypeTechnical ItemType = "TECHNICAL"
	ItemTypeBilling   ItemType = "BILLING"
	ItemTypeGeneral   ItemType = "GENERAL"
)

// Priority enumerates SLA urgency, ordered LOW < MEDIUM < HIGH < CRITICAL.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var priorityRanks = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// Rank returns the ordinal position of the priority, or -1 for unknown values.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}
	return -1
}

// IsValid reports whether the priority is a known value.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Escalate returns the next priority up. HIGH and CRITICAL are fixed points,
// so the result never decreases and is capped at CRITICAL.
func (p Priority) Escalate() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return p
	}
}

// CustomerTier marks the commercial tier of the requesting customer.
type CustomerTier string

const (
	TierStandard CustomerTier = "STANDARD"
	TierPremium  CustomerTier = "PREMIUM"
)

// WorkItem is the aggregate routed and escalated by the engine.
type WorkItem struct {
	ID                  string
	Subject             string
	Description         string
	Type                ItemType
	Priority            Priority
	Status              ItemStatus
	OwnerID             string
	EscalationLevel     int
	Origin              string
	SuppliedChannel     string
	CustomerTier        CustomerTier
	BusinessImpact      string
	RequiredProductTag  string
	CreatedAt           time.Time
	AssignmentDate      *time.Time
	SLAStartTime        time.Time
	ResponseSLATarget   time.Time
	ResolutionSLATarget time.Time
	FirstResponseTime   *time.Time
	ResolutionTime      *time.Time
	LastOwnerChangeAt   *time.Time
	PreviousOwnerID     string
	EscalationDate      *time.Time
	EscalationReason    string
	UpdatedAt           time.Time
}

// IsUnassigned reports whether the item still sits in the unassigned queue.
func (w *WorkItem) IsUnassigned() bool {
	return w.OwnerID == "" || w.OwnerID == UnassignedQueue
}

// EffectiveClock is the timestamp SLA breach detection measures from:
// the assignment date when present, otherwise the creation date.
func (w *WorkItem) EffectiveClock() time.Time {
	if w.AssignmentDate != nil {
		return *w.AssignmentDate
	}
	return w.CreatedAt
}

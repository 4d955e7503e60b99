package service

import (
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

// slaEntry holds the response/resolution windows for one priority.
type slaEntry struct {
	Response   time.Duration
	Resolution time.Duration
}

var slaTable = map[domain.Priority]slaEntry{
	domain.PriorityCritical: {Response: 1 * time.Hour, Resolution: 4 * time.Hour},
	domain.PriorityHigh:     {Response: 4 * time.Hour, Resolution: 24 * time.Hour},
	domain.PriorityMedium:   {Response: 24 * time.Hour, Resolution: 72 * time.Hour},
	domain.PriorityLow:      {Response: 72 * time.Hour, Resolution: 168 * time.Hour},
}

func slaFor(priority domain.Priority) slaEntry {
	if entry, ok := slaTable[priority]; ok {
		return entry
	}
	return slaTable[domain.PriorityMedium]
}

// ResponseThreshold returns the response window for the priority. Unknown
// priorities fall back to the MEDIUM row.
func ResponseThreshold(priority domain.Priority) time.Duration {
	return slaFor(priority).Response
}

// ComputeSLATargets derives response and resolution deadlines from priority
// and start time. Pure: targets are always start plus the table windows.
func ComputeSLATargets(priority domain.Priority, start time.Time) (response, resolution time.Time) {
	entry := slaFor(priority)
	return start.Add(entry.Response), start.Add(entry.Resolution)
}

// ApplySLATargets recomputes the item's deadlines from its current priority
// and SLA start time. Called on creation, priority change and reopen.
func ApplySLATargets(item *domain.WorkItem) {
	item.ResponseSLATarget, item.ResolutionSLATarget = ComputeSLATargets(item.Priority, item.SLAStartTime)
}

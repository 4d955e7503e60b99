package dto

import (
	"testing"
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

func TestWorkItemPayloadToDomain(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	escalated := created.Add(6 * time.Hour)
	ownerChanged := created.Add(6 * time.Hour)

	payload := WorkItemPayload{
		ID:                "item-1",
		Subject:           "portal outage",
		Type:              domain.ItemTypeTechnical,
		Priority:          domain.PriorityHigh,
		Status:            domain.StatusInProgress,
		OwnerID:           "lead-1",
		EscalationLevel:   1,
		CreatedAt:         &created,
		SLAStartTime:      &created,
		LastOwnerChangeAt: &ownerChanged,
		PreviousOwnerID:   "agent-1",
		EscalationDate:    &escalated,
		EscalationReason:  "response SLA breached",
	}

	item := payload.ToDomain()
	if item.ID != "item-1" || item.OwnerID != "lead-1" || item.EscalationLevel != 1 {
		t.Errorf("item = %+v, want core fields carried over", item)
	}
	if !item.CreatedAt.Equal(created) || !item.SLAStartTime.Equal(created) {
		t.Errorf("timestamps = %v/%v, want %v", item.CreatedAt, item.SLAStartTime, created)
	}
	if item.EscalationDate == nil || !item.EscalationDate.Equal(escalated) {
		t.Errorf("escalation date = %v, want %v", item.EscalationDate, escalated)
	}
	if item.EscalationReason != "response SLA breached" {
		t.Errorf("escalation reason = %q, want carried over", item.EscalationReason)
	}
	if item.LastOwnerChangeAt == nil || !item.LastOwnerChangeAt.Equal(ownerChanged) {
		t.Errorf("last owner change = %v, want %v", item.LastOwnerChangeAt, ownerChanged)
	}
	if item.PreviousOwnerID != "agent-1" {
		t.Errorf("previous owner = %q, want agent-1", item.PreviousOwnerID)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/support-router/internal/domain"
)

func TestAssignCriticalPrefersSeniorOverLowerWorkload(t *testing.T) {
	items := newMockItemRepository()
	items.openCounts = map[string]int{"agent-x": 3, "agent-y": 1}
	agents := newMockAgentRepository(
		testAgent("agent-x", domain.RoleAgent, domain.ExperienceSenior, "Technical"),
		testAgent("agent-y", domain.RoleAgent, domain.ExperienceJunior, "Technical"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:                 "item-1",
		Subject:            "Payment system down",
		Type:               domain.ItemTypeTechnical,
		Priority:           domain.PriorityCritical,
		Status:             domain.StatusNew,
		OwnerID:            domain.UnassignedQueue,
		RequiredProductTag: "payments",
	}

	assignments := routing.Assign(context.Background(), []*domain.WorkItem{item})
	if len(assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(assignments))
	}
	if item.OwnerID != "agent-x" {
		t.Errorf("owner = %q, want senior agent-x despite higher workload", item.OwnerID)
	}
	if item.AssignmentDate == nil {
		t.Error("assignment date not stamped")
	}
	if item.PreviousOwnerID != domain.UnassignedQueue {
		t.Errorf("previous owner = %q, want queue sentinel", item.PreviousOwnerID)
	}
	if len(audit.assignments) != 1 {
		t.Fatalf("assignment records = %d, want 1", len(audit.assignments))
	}
	if audit.assignments[0].Reason != AssignmentReason {
		t.Errorf("record reason = %q, want %q", audit.assignments[0].Reason, AssignmentReason)
	}
}

func TestAssignPicksLowestWorkload(t *testing.T) {
	items := newMockItemRepository()
	items.openCounts = map[string]int{"busy": 5, "idle": 1}
	agents := newMockAgentRepository(
		testAgent("busy", domain.RoleAgent, domain.ExperienceJunior, "Billing"),
		testAgent("idle", domain.RoleAgent, domain.ExperienceJunior, "Billing"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:       "item-1",
		Subject:  "Refund request",
		Type:     domain.ItemTypeBilling,
		Priority: domain.PriorityMedium,
		Status:   domain.StatusNew,
		OwnerID:  domain.UnassignedQueue,
	}
	routing.Assign(context.Background(), []*domain.WorkItem{item})
	if item.OwnerID != "idle" {
		t.Errorf("owner = %q, want idle", item.OwnerID)
	}
}

func TestAssignTiesKeepStableOrder(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository(
		testAgent("first", domain.RoleAgent, domain.ExperienceJunior, "General"),
		testAgent("second", domain.RoleAgent, domain.ExperienceJunior, "General"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:       "item-1",
		Subject:  "general question",
		Type:     domain.ItemTypeGeneral,
		Priority: domain.PriorityLow,
		Status:   domain.StatusNew,
		OwnerID:  domain.UnassignedQueue,
	}
	routing.Assign(context.Background(), []*domain.WorkItem{item})
	if item.OwnerID != "first" {
		t.Errorf("owner = %q, want first candidate on a workload tie", item.OwnerID)
	}
}

func TestAssignFallsBackToGeneralPool(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository(
		testAgent("generalist", domain.RoleAgent, domain.ExperienceJunior, "General"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:                 "item-1",
		Subject:            "strange hardware fault",
		Type:               domain.ItemTypeTechnical,
		Priority:           domain.PriorityMedium,
		Status:             domain.StatusNew,
		OwnerID:            domain.UnassignedQueue,
		RequiredProductTag: "hw",
	}
	assignments := routing.Assign(context.Background(), []*domain.WorkItem{item})
	if len(assignments) != 1 || item.OwnerID != "generalist" {
		t.Errorf("owner = %q, want General pool fallback", item.OwnerID)
	}
}

func TestAssignSpreadsBatchAcrossAgents(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository(
		testAgent("a1", domain.RoleAgent, domain.ExperienceJunior, "Billing"),
		testAgent("a2", domain.RoleAgent, domain.ExperienceJunior, "Billing"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	batch := []*domain.WorkItem{
		{ID: "item-1", Subject: "invoice", Type: domain.ItemTypeBilling, Priority: domain.PriorityMedium, Status: domain.StatusNew, OwnerID: domain.UnassignedQueue},
		{ID: "item-2", Subject: "invoice", Type: domain.ItemTypeBilling, Priority: domain.PriorityMedium, Status: domain.StatusNew, OwnerID: domain.UnassignedQueue},
	}
	assignments := routing.Assign(context.Background(), batch)
	if len(assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(assignments))
	}
	if batch[0].OwnerID == batch[1].OwnerID {
		t.Errorf("both items landed on %q; in-batch workload not advanced", batch[0].OwnerID)
	}
}

func TestAssignSkipsOwnedAndClosedItems(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository(
		testAgent("a1", domain.RoleAgent, domain.ExperienceJunior, "General"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	owned := &domain.WorkItem{ID: "item-1", Status: domain.StatusInProgress, OwnerID: "someone"}
	closed := &domain.WorkItem{ID: "item-2", Status: domain.StatusClosed, OwnerID: domain.UnassignedQueue}

	assignments := routing.Assign(context.Background(), []*domain.WorkItem{owned, closed})
	if assignments != nil {
		t.Fatalf("assignments = %v, want none", assignments)
	}
	if owned.OwnerID != "someone" {
		t.Errorf("owned item reassigned to %q", owned.OwnerID)
	}
	if items.saveCalls != 0 {
		t.Errorf("save calls = %d, want 0", items.saveCalls)
	}
}

func TestAssignNoCandidatesLeavesItemQueued(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository()
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:       "item-1",
		Subject:  "invoice",
		Type:     domain.ItemTypeBilling,
		Priority: domain.PriorityMedium,
		Status:   domain.StatusNew,
		OwnerID:  domain.UnassignedQueue,
	}
	assignments := routing.Assign(context.Background(), []*domain.WorkItem{item})
	if assignments != nil {
		t.Fatalf("assignments = %v, want none", assignments)
	}
	if !item.IsUnassigned() {
		t.Errorf("owner = %q, want item to stay queued", item.OwnerID)
	}
	// An empty pool is an outcome, not a fault.
	if len(audit.failures) != 0 {
		t.Errorf("failure records = %d, want 0", len(audit.failures))
	}
}

func TestAssignRecordsFailureOnCandidateQueryError(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository()
	agents.listErr = errors.New("pg down")
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:       "item-1",
		Type:     domain.ItemTypeGeneral,
		Priority: domain.PriorityMedium,
		Status:   domain.StatusNew,
		OwnerID:  domain.UnassignedQueue,
	}
	assignments := routing.Assign(context.Background(), []*domain.WorkItem{item})
	if assignments != nil {
		t.Fatalf("assignments = %v, want none", assignments)
	}
	if len(audit.failures) != 1 {
		t.Fatalf("failure records = %d, want 1", len(audit.failures))
	}
	if audit.failures[0].Component != "routing" {
		t.Errorf("failure component = %q, want routing", audit.failures[0].Component)
	}
}

func TestAssignSeniorRestrictionFallsBackWhenNoSenior(t *testing.T) {
	items := newMockItemRepository()
	agents := newMockAgentRepository(
		testAgent("junior", domain.RoleAgent, domain.ExperienceJunior, "Billing"),
	)
	audit := newMockAuditRepository()
	routing := newTestRouting(items, agents, audit)

	item := &domain.WorkItem{
		ID:       "item-1",
		Subject:  "invoice",
		Type:     domain.ItemTypeBilling,
		Priority: domain.PriorityHigh,
		Status:   domain.StatusNew,
		OwnerID:  domain.UnassignedQueue,
	}
	routing.Assign(context.Background(), []*domain.WorkItem{item})
	if item.OwnerID != "junior" {
		t.Errorf("owner = %q, want junior when no senior staff exist", item.OwnerID)
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/repository"
)

// AssignmentReason is the audit reason stamped on automatic assignments.
const AssignmentReason = "skill-based automatic assignment"

// Assignment reports one successful routing decision.
type Assignment struct {
	ItemID  string
	AgentID string
	Skill   string
}

// RoutingService selects owners for unassigned work items.
type RoutingService struct {
	items      repository.ItemRepository
	agents     repository.AgentRepository
	audit      repository.AuditRepository
	workload   *WorkloadIndex
	classifier *SkillClassifier
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// RoutingDependencies bundles collaborators.
type RoutingDependencies struct {
	ItemRepo   repository.ItemRepository
	AgentRepo  repository.AgentRepository
	AuditRepo  repository.AuditRepository
	Workload   *WorkloadIndex
	Classifier *SkillClassifier
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewRoutingService creates the service.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	return &RoutingService{
		items:      deps.ItemRepo,
		agents:     deps.AgentRepo,
		audit:      deps.AuditRepo,
		workload:   deps.Workload,
		classifier: deps.Classifier,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// Assign routes each unassigned item in the batch independently. Items that
// already have a non-queue owner are skipped, so re-invoking on an assigned
// batch is a no-op. Items with no eligible candidate stay queued; that is an
// outcome, not an error. Store failures are written to a failure record and
// do not abort the rest of the batch.
func (s *RoutingService) Assign(ctx context.Context, items []*domain.WorkItem) []Assignment {
	pending := make([]*domain.WorkItem, 0, len(items))
	skills := make(map[string]string, len(items))
	for _, item := range items {
		if !item.IsUnassigned() || !item.Status.IsOpen() {
			continue
		}
		pending = append(pending, item)
		skills[item.ID] = s.classifier.Classify(item)
	}
	if len(pending) == 0 {
		return nil
	}

	pools, err := s.loadCandidatePools(ctx, skills)
	if err != nil {
		s.recordFailure(ctx, "routing", "candidate query failed", err)
		return nil
	}

	// Workload is read once per batch and advanced in memory after every
	// in-batch assignment so one batch cannot pile onto a single agent.
	snapshot, err := s.workload.Load(ctx, poolAgentIDs(pools))
	if err != nil {
		s.recordFailure(ctx, "routing", "workload query failed", err)
		return nil
	}

	var assignments []Assignment
	var assigned []*domain.WorkItem
	now := time.Now()
	for _, item := range pending {
		skill := skills[item.ID]
		candidates := pools[skill]
		if len(candidates) == 0 {
			candidates = pools[GeneralSkill]
		}
		if len(candidates) == 0 {
			s.logger.Debug("no candidates for item, leaving queued",
				zap.String("item_id", item.ID), zap.String("skill", skill))
			continue
		}

		winner := pickCandidate(item.Priority, candidates, snapshot)
		if winner == nil {
			continue
		}

		previous := item.OwnerID
		item.OwnerID = winner.ID
		item.AssignmentDate = &now
		item.LastOwnerChangeAt = &now
		item.PreviousOwnerID = previous
		snapshot[winner.ID]++
		assigned = append(assigned, item)
		assignments = append(assignments, Assignment{ItemID: item.ID, AgentID: winner.ID, Skill: skill})
	}
	if len(assigned) == 0 {
		return nil
	}

	if err := s.items.SaveBatch(ctx, assigned); err != nil {
		s.recordFailure(ctx, "routing", "assignment save failed", err)
		return nil
	}

	for _, item := range assigned {
		s.metrics.RecordEngine("assignments")
		record := &domain.AssignmentRecord{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			AgentID:   item.OwnerID,
			Timestamp: now,
			Reason:    AssignmentReason,
			Priority:  item.Priority,
			Type:      item.Type,
		}
		if err := s.audit.RecordAssignment(ctx, record); err != nil {
			s.logger.Error("assignment audit write failed",
				zap.String("item_id", item.ID), zap.Error(err))
		}
	}
	return assignments
}

// loadCandidatePools queries the available-for-assignment pool once per
// distinct skill in the batch, plus the General fallback pool.
func (s *RoutingService) loadCandidatePools(ctx context.Context, skills map[string]string) (map[string][]domain.Agent, error) {
	wanted := map[string]bool{GeneralSkill: true}
	for _, tag := range skills {
		wanted[tag] = true
	}

	available := true
	pools := make(map[string][]domain.Agent, len(wanted))
	for tag := range wanted {
		agents, err := s.agents.List(ctx, repository.AgentFilter{
			Skills:                 []string{tag},
			AvailableForAssignment: &available,
		})
		if err != nil {
			return nil, err
		}
		pools[tag] = agents
	}
	return pools, nil
}

// pickCandidate returns the lowest-workload candidate, preferring senior
// staff for HIGH and CRITICAL items. Ties keep the first candidate in stable
// input order.
func pickCandidate(priority domain.Priority, candidates []domain.Agent, workload map[string]int) *domain.Agent {
	if priority.Rank() >= domain.PriorityHigh.Rank() {
		senior := make([]domain.Agent, 0, len(candidates))
		for _, agent := range candidates {
			if agent.ExperienceLevel.Rank() >= domain.ExperienceSenior.Rank() {
				senior = append(senior, agent)
			}
		}
		if len(senior) > 0 {
			candidates = senior
		}
	}

	var winner *domain.Agent
	best := 0
	for i := range candidates {
		load := workload[candidates[i].ID]
		if winner == nil || load < best {
			winner = &candidates[i]
			best = load
		}
	}
	return winner
}

func poolAgentIDs(pools map[string][]domain.Agent) []string {
	seen := map[string]bool{}
	var ids []string
	for _, pool := range pools {
		for _, agent := range pool {
			if !seen[agent.ID] {
				seen[agent.ID] = true
				ids = append(ids, agent.ID)
			}
		}
	}
	return ids
}

func (s *RoutingService) recordFailure(ctx context.Context, component, message string, cause error) {
	s.metrics.RecordEngine("failures")
	s.logger.Error(message, zap.String("component", component), zap.Error(cause))
	record := &domain.FailureRecord{
		ID:        uuid.NewString(),
		Component: component,
		Message:   message,
		Detail:    cause.Error(),
		Timestamp: time.Now(),
		Actor:     "system",
	}
	if err := s.audit.RecordFailure(ctx, record); err != nil {
		s.logger.Error("failure audit write failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/notify"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/repository"
	apperrors "github.com/spec-kit/support-router/pkg/util"
)

// EscalationOutcome reports what a single escalation attempt did.
type EscalationOutcome string

const (
	OutcomeEscalated EscalationOutcome = "escalated"
	OutcomeNoTarget  EscalationOutcome = "no-target"
)

// EscalationService advances breaching items through the responder chain.
type EscalationService struct {
	items    repository.ItemRepository
	agents   repository.AgentRepository
	audit    repository.AuditRepository
	notifier notify.Notifier
	calendar Calendar
	lock     RunLock
	cfg      config.EscalationConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// EscalationDependencies bundles collaborators.
type EscalationDependencies struct {
	ItemRepo  repository.ItemRepository
	AgentRepo repository.AgentRepository
	AuditRepo repository.AuditRepository
	Notifier  notify.Notifier
	Calendar  Calendar
	Lock      RunLock
	Config    config.EscalationConfig
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewEscalationService creates the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		items:    deps.ItemRepo,
		agents:   deps.AgentRepo,
		audit:    deps.AuditRepo,
		notifier: deps.Notifier,
		calendar: deps.Calendar,
		lock:     deps.Lock,
		cfg:      deps.Config,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// FindBreaching returns open items below the max escalation level whose
// effective clock is older than the response window for their priority.
// Ordered priority descending then age ascending, capped at the batch size.
func (s *EscalationService) FindBreaching(ctx context.Context) ([]domain.WorkItem, error) {
	now := time.Now()
	cutoffs := map[domain.Priority]time.Time{
		domain.PriorityCritical: now.Add(-ResponseThreshold(domain.PriorityCritical)),
		domain.PriorityHigh:     now.Add(-ResponseThreshold(domain.PriorityHigh)),
		domain.PriorityMedium:   now.Add(-ResponseThreshold(domain.PriorityMedium)),
		domain.PriorityLow:      now.Add(-ResponseThreshold(domain.PriorityLow)),
	}
	batch := s.cfg.BatchSize
	if batch <= 0 || batch > 50 {
		batch = 50
	}
	return s.items.ListBreaching(ctx, cutoffs, domain.MaxEscalationLevel, batch)
}

// Escalate moves the item one tier up the responder chain. On success the
// owner becomes the selected target, the level advances by one (capped at the
// terminal level), the priority steps up through its successor function, and
// SLA targets are recomputed from the existing SLA start time.
func (s *EscalationService) Escalate(ctx context.Context, item *domain.WorkItem, reason string) (EscalationOutcome, error) {
	if item.EscalationLevel > domain.MaxEscalationLevel {
		s.logger.Warn("escalation level beyond max, clamping",
			zap.String("item_id", item.ID), zap.Int("level", item.EscalationLevel))
		item.EscalationLevel = domain.MaxEscalationLevel
	}

	targetRole := escalationTargetRole(item.EscalationLevel)
	target, err := s.selectTarget(ctx, targetRole)
	if err != nil {
		return "", apperrors.NewDependencyFailure("escalation", err)
	}
	if target == nil {
		s.logger.Warn("no escalation target available",
			zap.String("item_id", item.ID), zap.String("role", string(targetRole)))
		return OutcomeNoTarget, nil
	}

	now := time.Now()
	originalOwner := item.OwnerID
	item.PreviousOwnerID = originalOwner
	item.OwnerID = target.ID
	item.LastOwnerChangeAt = &now
	item.EscalationLevel = minInt(item.EscalationLevel+1, domain.MaxEscalationLevel)
	item.EscalationDate = &now
	item.EscalationReason = reason
	item.Priority = item.Priority.Escalate()
	ApplySLATargets(item)

	if err := s.items.SaveBatch(ctx, []*domain.WorkItem{item}); err != nil {
		return "", apperrors.NewDependencyFailure("escalation", err)
	}
	if err := s.agents.SaveEscalatedCases(ctx, target.ID, target.CurrentEscalatedCases+1); err != nil {
		s.logger.Error("escalated-cases counter update failed",
			zap.String("agent_id", target.ID), zap.Error(err))
	}

	s.metrics.RecordEngine("escalations")
	record := &domain.EscalationRecord{
		ID:              uuid.NewString(),
		ItemID:          item.ID,
		EscalatedToID:   target.ID,
		Timestamp:       now,
		Level:           item.EscalationLevel,
		Reason:          reason,
		Priority:        item.Priority,
		OriginalOwnerID: originalOwner,
	}
	if err := s.audit.RecordEscalation(ctx, record); err != nil {
		s.logger.Error("escalation audit write failed",
			zap.String("item_id", item.ID), zap.Error(err))
	}

	// Fire and forget: dispatch failures never fail the escalation.
	if err := s.notifier.Enqueue(ctx, notify.Message{
		Kind:          notify.KindEscalation,
		ItemID:        item.ID,
		TargetAgentID: target.ID,
		Reason:        reason,
		CC:            []string{originalOwner},
	}); err != nil {
		s.logger.Error("notification enqueue failed",
			zap.String("item_id", item.ID), zap.Error(err))
	}

	return OutcomeEscalated, nil
}

// EscalateByID is the manual escalation entry point. It shares target
// selection and mutation logic with the scheduled batch.
func (s *EscalationService) EscalateByID(ctx context.Context, itemID, reason string) (EscalationOutcome, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if !item.Status.IsOpen() {
		return "", apperrors.NewConflict("cannot escalate a closed item", map[string]any{"item_id": itemID})
	}
	return s.Escalate(ctx, item, reason)
}

// RunBatch is the scheduled driver: inside operating hours it escalates every
// breaching item, continuing past per-item failures. Returns the number of
// items escalated.
func (s *EscalationService) RunBatch(ctx context.Context) (int, error) {
	if !s.withinOperatingHours() {
		s.logger.Info("outside operating hours, skipping escalation run")
		return 0, nil
	}
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx)
		if err != nil {
			// Lock failure is not a reason to skip work; overlap prevention
			// degrades, correctness does not.
			s.logger.Warn("run lock unavailable, proceeding", zap.Error(err))
		} else if !acquired {
			s.logger.Info("escalation run already active, skipping")
			return 0, nil
		} else {
			defer func() {
				if err := s.lock.Release(ctx); err != nil {
					s.logger.Warn("run lock release failed", zap.Error(err))
				}
			}()
		}
	}

	breaching, err := s.FindBreaching(ctx)
	if err != nil {
		s.recordFailure(ctx, "escalation", "breaching query failed", err)
		return 0, apperrors.NewDependencyFailure("escalation", err)
	}

	escalated := 0
	for i := range breaching {
		item := breaching[i]
		outcome, err := s.Escalate(ctx, &item, "response SLA breached")
		if err != nil {
			s.recordFailure(ctx, "escalation", "escalation failed for item "+item.ID, err)
			continue
		}
		if outcome == OutcomeEscalated {
			escalated++
		}
	}
	s.logger.Info("escalation run finished",
		zap.Int("breaching", len(breaching)), zap.Int("escalated", escalated))
	return escalated, nil
}

func (s *EscalationService) withinOperatingHours() bool {
	if s.calendar == nil {
		return true
	}
	eligible, err := s.calendar.WithinOperatingHours(time.Now())
	if err != nil {
		// Fail open: a broken calendar must not stall escalations.
		s.logger.Warn("operating hours check failed, assuming eligible", zap.Error(err))
		return true
	}
	return eligible
}

// selectTarget picks the available agent of the role with the fewest
// currently escalated cases.
func (s *EscalationService) selectTarget(ctx context.Context, role domain.AgentRole) (*domain.Agent, error) {
	available := true
	candidates, err := s.agents.List(ctx, repository.AgentFilter{
		Role:                   &role,
		AvailableForEscalation: &available,
		OrderByEscalatedCases:  true,
		Limit:                  1,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

// escalationTargetRole maps the current level to the next responder tier.
// The chain ends at Director.
func escalationTargetRole(level int) domain.AgentRole {
	switch {
	case level <= 1:
		return domain.RoleTeamLead
	case level == 2:
		return domain.RoleManager
	default:
		return domain.RoleDirector
	}
}

func (s *EscalationService) recordFailure(ctx context.Context, component, message string, cause error) {
	s.metrics.RecordEngine("failures")
	s.logger.Error(message, zap.String("component", component), zap.Error(cause))
	record := &domain.FailureRecord{
		ID:        uuid.NewString(),
		Component: component,
		Message:   message,
		Detail:    cause.Error(),
		Timestamp: time.Now(),
		Actor:     "scheduler",
	}
	if err := s.audit.RecordFailure(ctx, record); err != nil {
		s.logger.Error("failure audit write failed", zap.Error(err))
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

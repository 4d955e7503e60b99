package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/ctxutil"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/notify"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/repository"
	apperrors "github.com/spec-kit/support-router/pkg/util"
)

// CloseHook is invoked after an item transitions to CLOSED. Downstream
// behavior is out of scope; the hook only defines the seam.
type CloseHook func(ctx context.Context, item *domain.WorkItem)

// LifecycleService reacts to item creation and update batches: it applies
// defaults, validates, stamps SLA targets and transition timestamps, and
// hands unassigned items to the routing engine.
type LifecycleService struct {
	items     repository.ItemRepository
	audit     repository.AuditRepository
	routing   *RoutingService
	notifier  notify.Notifier
	closeHook CloseHook
	cfg       config.LifecycleConfig
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// LifecycleDependencies bundles collaborators.
type LifecycleDependencies struct {
	ItemRepo  repository.ItemRepository
	AuditRepo repository.AuditRepository
	Routing   *RoutingService
	Notifier  notify.Notifier
	CloseHook CloseHook
	Config    config.LifecycleConfig
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewLifecycleService creates the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		items:     deps.ItemRepo,
		audit:     deps.AuditRepo,
		routing:   deps.Routing,
		notifier:  deps.Notifier,
		closeHook: deps.CloseHook,
		cfg:       deps.Config,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

// OnItemsCreated handles a creation batch as one unit of work: defaults,
// validation (which blocks persistence for the whole batch), SLA stamping,
// atomic save, then routing and notification side effects.
func (s *LifecycleService) OnItemsCreated(ctx context.Context, items []*domain.WorkItem) error {
	ctx, err := s.enterBatch(ctx, len(items))
	if err != nil {
		return err
	}

	now := time.Now()
	for _, item := range items {
		s.applyCreateDefaults(item, now)
		if err := validateItem(item); err != nil {
			return err
		}
		ApplySLATargets(item)
	}

	if err := s.items.SaveBatch(ctx, items); err != nil {
		s.recordFailure(ctx, "create batch save failed", err)
		return apperrors.NewDependencyFailure("lifecycle", err)
	}
	s.metrics.RecordEngine("items_created")

	var unassigned []*domain.WorkItem
	for _, item := range items {
		if item.IsUnassigned() {
			unassigned = append(unassigned, item)
		}
	}
	if len(unassigned) > 0 {
		s.routing.Assign(ctx, unassigned)
	}

	for _, item := range items {
		if item.Priority.Rank() >= domain.PriorityHigh.Rank() {
			s.enqueueNotification(ctx, item, notify.KindPriority, "high priority item created")
		}
	}
	return nil
}

// OnItemsUpdated handles an update batch. previous maps item id to the state
// before the update; items without a previous state are treated as
// unchanged-from-self, which makes re-invocation with identical inputs a
// no-op.
func (s *LifecycleService) OnItemsUpdated(ctx context.Context, items []*domain.WorkItem, previous map[string]*domain.WorkItem) error {
	ctx, err := s.enterBatch(ctx, len(items))
	if err != nil {
		return err
	}

	now := time.Now()
	var escalatedPriority []*domain.WorkItem
	var closed []*domain.WorkItem
	for _, item := range items {
		prev, ok := previous[item.ID]
		if !ok {
			prev = item
		}
		if raised := s.applyUpdateTransitions(item, prev, now); raised {
			escalatedPriority = append(escalatedPriority, item)
		}
		if item.Status == domain.StatusClosed && prev.Status != domain.StatusClosed {
			closed = append(closed, item)
		}
		if err := validateItem(item); err != nil {
			return err
		}
	}

	if err := s.items.SaveBatch(ctx, items); err != nil {
		s.recordFailure(ctx, "update batch save failed", err)
		return apperrors.NewDependencyFailure("lifecycle", err)
	}
	s.metrics.RecordEngine("items_updated")

	// Items whose priority went up are surfaced for escalation handling; the
	// escalation decision itself belongs to the scheduled engine.
	for _, item := range escalatedPriority {
		s.enqueueNotification(ctx, item, notify.KindPriority, "priority escalated")
	}
	if s.closeHook != nil {
		for _, item := range closed {
			s.closeHook(ctx, item)
		}
	}
	return nil
}

func (s *LifecycleService) enterBatch(ctx context.Context, size int) (context.Context, error) {
	if ctxutil.InBatch(ctx) {
		return ctx, apperrors.NewConflict("reentrant lifecycle invocation", nil)
	}
	if size == 0 {
		return ctx, apperrors.NewValidationError("empty batch", nil)
	}
	if max := s.cfg.MaxBatchSize; max > 0 && size > max {
		return ctx, apperrors.NewValidationError("batch too large", map[string]any{
			"size": size, "max": max,
		})
	}
	return ctxutil.WithBatch(ctx, uuid.NewString()), nil
}

func (s *LifecycleService) applyCreateDefaults(item *domain.WorkItem, now time.Time) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Priority == "" {
		item.Priority = domain.PriorityMedium
	}
	if item.Type == "" {
		item.Type = domain.ItemTypeGeneral
	}
	if item.Status == "" {
		item.Status = domain.StatusNew
	}
	if item.OwnerID == "" {
		item.OwnerID = domain.UnassignedQueue
	}
	if item.Origin == "" && item.SuppliedChannel != "" {
		item.Origin = item.SuppliedChannel
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.SLAStartTime.IsZero() {
		item.SLAStartTime = now
	}
	if item.EscalationLevel < 0 {
		item.EscalationLevel = 0
	}
	// Premium-tier channel customers are served at HIGH or better.
	if item.CustomerTier == domain.TierPremium && item.SuppliedChannel != "" &&
		item.Priority.Rank() < domain.PriorityHigh.Rank() {
		item.Priority = domain.PriorityHigh
	}
}

// applyUpdateTransitions stamps transition bookkeeping and reports whether
// the priority was raised. SLA targets are recomputed at the end of every
// update so each persisted state satisfies targets = SLA start + table window.
func (s *LifecycleService) applyUpdateTransitions(item, prev *domain.WorkItem, now time.Time) bool {
	// Updates carry the new state; a missing SLA start inherits the stored one
	// so the recompute below never anchors on the zero time.
	if item.SLAStartTime.IsZero() {
		item.SLAStartTime = prev.SLAStartTime
	}
	if prev.Status == domain.StatusNew && item.Status != domain.StatusNew && item.FirstResponseTime == nil {
		item.FirstResponseTime = &now
	}
	if item.Status == domain.StatusClosed && prev.Status != domain.StatusClosed && item.ResolutionTime == nil {
		item.ResolutionTime = &now
	}
	if prev.Status == domain.StatusClosed && item.Status.IsOpen() {
		item.EscalationLevel = 0
		item.SLAStartTime = now
	}

	raised := item.Priority.Rank() > prev.Priority.Rank()

	if item.OwnerID != prev.OwnerID {
		item.LastOwnerChangeAt = &now
		item.PreviousOwnerID = prev.OwnerID
	}

	// Pure in priority and start time, so recomputing unconditionally covers
	// raises, drops and status-only updates alike.
	ApplySLATargets(item)
	return raised
}

func validateItem(item *domain.WorkItem) error {
	if !item.Priority.IsValid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{
			"item_id": item.ID, "priority": item.Priority,
		})
	}
	if item.Type == domain.ItemTypeTechnical && item.RequiredProductTag == "" {
		return apperrors.NewValidationError("technical items require a product tag", map[string]any{
			"item_id": item.ID,
		})
	}
	if item.Priority == domain.PriorityCritical && item.BusinessImpact == "" {
		return apperrors.NewValidationError("critical items require a business impact statement", map[string]any{
			"item_id": item.ID,
		})
	}
	return nil
}

func (s *LifecycleService) recordFailure(ctx context.Context, message string, cause error) {
	s.metrics.RecordEngine("failures")
	s.logger.Error(message, zap.String("component", "lifecycle"), zap.Error(cause))
	record := &domain.FailureRecord{
		ID:        uuid.NewString(),
		Component: "lifecycle",
		Message:   message,
		Detail:    cause.Error(),
		Timestamp: time.Now(),
		Actor:     "system",
	}
	if err := s.audit.RecordFailure(ctx, record); err != nil {
		s.logger.Error("failure audit write failed", zap.Error(err))
	}
}

func (s *LifecycleService) enqueueNotification(ctx context.Context, item *domain.WorkItem, kind notify.Kind, reason string) {
	if err := s.notifier.Enqueue(ctx, notify.Message{
		Kind:          kind,
		ItemID:        item.ID,
		TargetAgentID: item.OwnerID,
		Reason:        reason,
	}); err != nil {
		s.logger.Error("notification enqueue failed",
			zap.String("item_id", item.ID), zap.Error(err))
	}
}

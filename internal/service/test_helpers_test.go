package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/notify"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/repository"
)

// Ensure mocks implement the repository interfaces.
var _ repository.ItemRepository = (*mockItemRepository)(nil)
var _ repository.AgentRepository = (*mockAgentRepository)(nil)
var _ repository.AuditRepository = (*mockAuditRepository)(nil)
var _ notify.Notifier = (*mockNotifier)(nil)

// mockItemRepository implements repository.ItemRepository in memory.
type mockItemRepository struct {
	items      map[string]*domain.WorkItem
	saveErr    error
	countErr   error
	listErr    error
	saveCalls  int
	openCounts map[string]int
}

func newMockItemRepository() *mockItemRepository {
	return &mockItemRepository{items: make(map[string]*domain.WorkItem)}
}

func (m *mockItemRepository) put(item *domain.WorkItem) {
	copied := *item
	m.items[item.ID] = &copied
}

func (m *mockItemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	if item, ok := m.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, errNotFound
}

func (m *mockItemRepository) SaveBatch(ctx context.Context, items []*domain.WorkItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saveCalls++
	for _, item := range items {
		m.put(item)
	}
	return nil
}

func (m *mockItemRepository) ListBreaching(ctx context.Context, cutoffs map[domain.Priority]time.Time, maxLevel, limit int) ([]domain.WorkItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []domain.WorkItem
	for _, item := range m.items {
		if !item.Status.IsOpen() || item.EscalationLevel >= maxLevel {
			continue
		}
		cutoff, ok := cutoffs[item.Priority]
		if !ok {
			continue
		}
		if item.EffectiveClock().After(cutoff) {
			continue
		}
		result = append(result, *item)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority.Rank() != result[j].Priority.Rank() {
			return result[i].Priority.Rank() > result[j].Priority.Rank()
		}
		return result[i].EffectiveClock().Before(result[j].EffectiveClock())
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockItemRepository) CountOpenByOwner(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	counts := make(map[string]int, len(ownerIDs))
	if m.openCounts != nil {
		for _, id := range ownerIDs {
			if count, ok := m.openCounts[id]; ok {
				counts[id] = count
			}
		}
		return counts, nil
	}
	for _, id := range ownerIDs {
		for _, item := range m.items {
			if item.OwnerID == id && item.Status.IsOpen() {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// mockAgentRepository implements repository.AgentRepository in memory.
type mockAgentRepository struct {
	agents     []domain.Agent
	listErr    error
	savedCases map[string]int
}

func newMockAgentRepository(agents ...domain.Agent) *mockAgentRepository {
	return &mockAgentRepository{agents: agents, savedCases: make(map[string]int)}
}

func (m *mockAgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	for i := range m.agents {
		if m.agents[i].ID == id {
			copied := m.agents[i]
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (m *mockAgentRepository) List(ctx context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []domain.Agent
	for _, agent := range m.agents {
		if len(filter.Skills) > 0 && !hasAnySkill(&agent, filter.Skills) {
			continue
		}
		if filter.Role != nil && agent.Role != *filter.Role {
			continue
		}
		if filter.AvailableForAssignment != nil && agent.AvailableForAssignment != *filter.AvailableForAssignment {
			continue
		}
		if filter.AvailableForEscalation != nil && agent.AvailableForEscalation != *filter.AvailableForEscalation {
			continue
		}
		result = append(result, agent)
	}
	if filter.OrderByEscalatedCases {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CurrentEscalatedCases < result[j].CurrentEscalatedCases
		})
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockAgentRepository) SaveEscalatedCases(ctx context.Context, agentID string, count int) error {
	m.savedCases[agentID] = count
	for i := range m.agents {
		if m.agents[i].ID == agentID {
			m.agents[i].CurrentEscalatedCases = count
		}
	}
	return nil
}

func hasAnySkill(agent *domain.Agent, tags []string) bool {
	for _, tag := range tags {
		if agent.HasSkill(tag) {
			return true
		}
	}
	return false
}

// mockAuditRepository records audit writes.
type mockAuditRepository struct {
	assignments []domain.AssignmentRecord
	escalations []domain.EscalationRecord
	failures    []domain.FailureRecord
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{}
}

func (m *mockAuditRepository) RecordAssignment(ctx context.Context, record *domain.AssignmentRecord) error {
	m.assignments = append(m.assignments, *record)
	return nil
}

func (m *mockAuditRepository) RecordEscalation(ctx context.Context, record *domain.EscalationRecord) error {
	m.escalations = append(m.escalations, *record)
	return nil
}

func (m *mockAuditRepository) RecordFailure(ctx context.Context, record *domain.FailureRecord) error {
	m.failures = append(m.failures, *record)
	return nil
}

// mockNotifier captures enqueued notification requests.
type mockNotifier struct {
	messages []notify.Message
	err      error
}

func (m *mockNotifier) Enqueue(ctx context.Context, msg notify.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) Close() error { return nil }

// stubCalendar returns a fixed operating-hours answer.
type stubCalendar struct {
	within bool
	err    error
}

func (c stubCalendar) WithinOperatingHours(now time.Time) (bool, error) {
	return c.within, c.err
}

// stubLock is an in-memory run lock.
type stubLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *stubLock) Release(ctx context.Context) error {
	l.held = false
	l.releases++
	return nil
}

var errNotFound = notFoundError("not found")

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func newTestRouting(items *mockItemRepository, agents *mockAgentRepository, audit *mockAuditRepository) *RoutingService {
	return NewRoutingService(RoutingDependencies{
		ItemRepo:   items,
		AgentRepo:  agents,
		AuditRepo:  audit,
		Workload:   NewWorkloadIndex(items),
		Classifier: NewSkillClassifier(DefaultClassifierRules()),
		Logger:     zap.NewNop(),
		Metrics:    observability.NewMetrics(),
	})
}

func newTestEscalation(items *mockItemRepository, agents *mockAgentRepository, audit *mockAuditRepository, notifier *mockNotifier) *EscalationService {
	return NewEscalationService(EscalationDependencies{
		ItemRepo:  items,
		AgentRepo: agents,
		AuditRepo: audit,
		Notifier:  notifier,
		Calendar:  stubCalendar{within: true},
		Lock:      &stubLock{},
		Config:    config.EscalationConfig{BatchSize: 50},
		Logger:    zap.NewNop(),
		Metrics:   observability.NewMetrics(),
	})
}

func newTestLifecycle(items *mockItemRepository, agents *mockAgentRepository, audit *mockAuditRepository, notifier *mockNotifier) *LifecycleService {
	return NewLifecycleService(LifecycleDependencies{
		ItemRepo:  items,
		AuditRepo: audit,
		Routing:   newTestRouting(items, agents, audit),
		Notifier:  notifier,
		Config:    config.LifecycleConfig{MaxBatchSize: 200},
		Logger:    zap.NewNop(),
		Metrics:   observability.NewMetrics(),
	})
}

func testAgent(id string, role domain.AgentRole, level domain.ExperienceLevel, skills ...string) domain.Agent {
	return domain.Agent{
		ID:                     id,
		Name:                   id,
		Email:                  id + "@example.com",
		Skills:                 skills,
		ExperienceLevel:        level,
		Role:                   role,
		AvailableForAssignment: true,
	}
}

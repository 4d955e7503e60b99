package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-router/internal/domain"
)

// AuditRepository stores append-only audit entries.
type AuditRepository interface {
	RecordAssignment(ctx context.Context, record *domain.AssignmentRecord) error
	RecordEscalation(ctx context.Context, record *domain.EscalationRecord) error
	RecordFailure(ctx context.Context, record *domain.FailureRecord) error
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) RecordAssignment(ctx context.Context, record *domain.AssignmentRecord) error {
	const query = `
        INSERT INTO assignment_records (id, item_id, agent_id, recorded_at, reason, priority, item_type)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.ItemID,
		record.AgentID,
		record.Timestamp,
		record.Reason,
		record.Priority,
		record.Type,
	)
	return err
}

func (r *auditRepository) RecordEscalation(ctx context.Context, record *domain.EscalationRecord) error {
	const query = `
        INSERT INTO escalation_records (id, item_id, escalated_to_id, recorded_at, level, reason, priority, original_owner_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.ItemID,
		record.EscalatedToID,
		record.Timestamp,
		record.Level,
		record.Reason,
		record.Priority,
		record.OriginalOwnerID,
	)
	return err
}

func (r *auditRepository) RecordFailure(ctx context.Context, record *domain.FailureRecord) error {
	const query = `
        INSERT INTO failure_records (id, component, message, detail, recorded_at, actor)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Component,
		record.Message,
		record.Detail,
		record.Timestamp,
		record.Actor,
	)
	return err
}

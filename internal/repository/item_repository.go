package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-router/internal/domain"
)

// ItemRepository encapsulates work item persistence. It is the catalog-store
// boundary: the engines query and save through it, nothing else.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	// SaveBatch upserts all items in a single transaction. The batch commits
	// together or not at all.
	SaveBatch(ctx context.Context, items []*domain.WorkItem) error
	// ListBreaching returns open items below maxLevel whose effective clock
	// (assignment date, else creation date) is older than the per-priority
	// cutoff. Ordered priority descending, then age ascending, capped at limit.
	ListBreaching(ctx context.Context, cutoffs map[domain.Priority]time.Time, maxLevel, limit int) ([]domain.WorkItem, error)
	// CountOpenByOwner counts non-closed items per owner id.
	CountOpenByOwner(ctx context.Context, ownerIDs []string) (map[string]int, error)
}

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository instantiates the repository.
func NewItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &itemRepository{pool: pool}
}

const itemColumns = `id, subject, description, item_type, priority, status, owner_id,
               escalation_level, origin, supplied_channel, customer_tier, business_impact,
               required_product_tag, created_at, assignment_date, sla_start_time,
               response_sla_target, resolution_sla_target, first_response_time,
               resolution_time, last_owner_change_at, previous_owner_id,
               escalation_date, escalation_reason, updated_at`

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + ` FROM work_items WHERE id=$1`
	var item domain.WorkItem
	if err := scanItem(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) SaveBatch(ctx context.Context, items []*domain.WorkItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO work_items (id, subject, description, item_type, priority, status, owner_id,
            escalation_level, origin, supplied_channel, customer_tier, business_impact,
            required_product_tag, created_at, assignment_date, sla_start_time,
            response_sla_target, resolution_sla_target, first_response_time, resolution_time,
            last_owner_change_at, previous_owner_id, escalation_date, escalation_reason, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,NOW())
        ON CONFLICT (id) DO UPDATE SET
            subject=EXCLUDED.subject, description=EXCLUDED.description,
            item_type=EXCLUDED.item_type, priority=EXCLUDED.priority,
            status=EXCLUDED.status, owner_id=EXCLUDED.owner_id,
            escalation_level=EXCLUDED.escalation_level, origin=EXCLUDED.origin,
            supplied_channel=EXCLUDED.supplied_channel, customer_tier=EXCLUDED.customer_tier,
            business_impact=EXCLUDED.business_impact,
            required_product_tag=EXCLUDED.required_product_tag,
            assignment_date=EXCLUDED.assignment_date, sla_start_time=EXCLUDED.sla_start_time,
            response_sla_target=EXCLUDED.response_sla_target,
            resolution_sla_target=EXCLUDED.resolution_sla_target,
            first_response_time=EXCLUDED.first_response_time,
            resolution_time=EXCLUDED.resolution_time,
            last_owner_change_at=EXCLUDED.last_owner_change_at,
            previous_owner_id=EXCLUDED.previous_owner_id,
            escalation_date=EXCLUDED.escalation_date,
            escalation_reason=EXCLUDED.escalation_reason, updated_at=NOW()`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID,
			item.Subject,
			item.Description,
			item.Type,
			item.Priority,
			item.Status,
			item.OwnerID,
			item.EscalationLevel,
			item.Origin,
			item.SuppliedChannel,
			item.CustomerTier,
			item.BusinessImpact,
			item.RequiredProductTag,
			item.CreatedAt,
			item.AssignmentDate,
			item.SLAStartTime,
			item.ResponseSLATarget,
			item.ResolutionSLATarget,
			item.FirstResponseTime,
			item.ResolutionTime,
			item.LastOwnerChangeAt,
			item.PreviousOwnerID,
			item.EscalationDate,
			item.EscalationReason,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *itemRepository) ListBreaching(ctx context.Context, cutoffs map[domain.Priority]time.Time, maxLevel, limit int) ([]domain.WorkItem, error) {
	if limit <= 0 {
		limit = 50
	}
	args := []any{maxLevel}
	clauses := make([]string, 0, len(cutoffs))
	for _, priority := range []domain.Priority{domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
		cutoff, ok := cutoffs[priority]
		if !ok {
			continue
		}
		args = append(args, priority)
		priorityArg := len(args)
		args = append(args, cutoff)
		clauses = append(clauses, fmt.Sprintf("(priority=$%d AND COALESCE(assignment_date, created_at) <= $%d)", priorityArg, len(args)))
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+itemColumns+`
             FROM work_items
             WHERE status <> 'CLOSED' AND escalation_level < $1 AND (%s)
             ORDER BY CASE priority
                 WHEN 'CRITICAL' THEN 3 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0
             END DESC, COALESCE(assignment_date, created_at) ASC
             LIMIT %d`, strings.Join(clauses, " OR "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *itemRepository) CountOpenByOwner(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}
	const query = `
        SELECT owner_id, COUNT(*) FROM work_items
        WHERE status <> 'CLOSED' AND owner_id = ANY($1)
        GROUP BY owner_id`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID string
		var count int
		if err := rows.Scan(&ownerID, &count); err != nil {
			return nil, err
		}
		counts[ownerID] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, item *domain.WorkItem) error {
	return row.Scan(
		&item.ID,
		&item.Subject,
		&item.Description,
		&item.Type,
		&item.Priority,
		&item.Status,
		&item.OwnerID,
		&item.EscalationLevel,
		&item.Origin,
		&item.SuppliedChannel,
		&item.CustomerTier,
		&item.BusinessImpact,
		&item.RequiredProductTag,
		&item.CreatedAt,
		&item.AssignmentDate,
		&item.SLAStartTime,
		&item.ResponseSLATarget,
		&item.ResolutionSLATarget,
		&item.FirstResponseTime,
		&item.ResolutionTime,
		&item.LastOwnerChangeAt,
		&item.PreviousOwnerID,
		&item.EscalationDate,
		&item.EscalationReason,
		&item.UpdatedAt,
	)
}

func scanItems(rows pgx.Rows) ([]domain.WorkItem, error) {
	var result []domain.WorkItem
	for rows.Next() {
		var item domain.WorkItem
		if err := scanItem(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

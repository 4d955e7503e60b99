package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-router/internal/domain"
)

// AgentFilter defines query params for agent listing.
type AgentFilter struct {
	// Skills matches agents carrying any of the given tags.
	Skills                 []string
	Role                   *domain.AgentRole
	AvailableForAssignment *bool
	AvailableForEscalation *bool
	// OrderByEscalatedCases sorts ascending by current_escalated_cases
	// instead of the default creation order.
	OrderByEscalatedCases bool
	Limit                 int
}

// AgentRepository reads agent records. Agents are owned externally; the only
// field the core ever writes back is the escalated-cases counter.
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
	SaveEscalatedCases(ctx context.Context, agentID string, count int) error
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, name, email, skills, experience_level, max_cases,
        available_for_assignment, available_for_escalation, role,
        current_escalated_cases, created_at, updated_at`

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id=$1`
	var agent domain.Agent
	if err := scanAgent(r.pool.QueryRow(ctx, query, id), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents`
	args := []any{}
	clauses := []string{}

	if len(filter.Skills) > 0 {
		args = append(args, filter.Skills)
		clauses = append(clauses, fmt.Sprintf("skills && $%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.AvailableForAssignment != nil {
		args = append(args, *filter.AvailableForAssignment)
		clauses = append(clauses, fmt.Sprintf("available_for_assignment=$%d", len(args)))
	}
	if filter.AvailableForEscalation != nil {
		args = append(args, *filter.AvailableForEscalation)
		clauses = append(clauses, fmt.Sprintf("available_for_escalation=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	if filter.OrderByEscalatedCases {
		query += " ORDER BY current_escalated_cases ASC, created_at ASC"
	} else {
		query += " ORDER BY created_at ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := scanAgent(rows, &agent); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) SaveEscalatedCases(ctx context.Context, agentID string, count int) error {
	const query = `UPDATE agents SET current_escalated_cases=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, count, agentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAgent(row rowScanner, agent *domain.Agent) error {
	return row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Skills,
		&agent.ExperienceLevel,
		&agent.MaxCases,
		&agent.AvailableForAssignment,
		&agent.AvailableForEscalation,
		&agent.Role,
		&agent.CurrentEscalatedCases,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
}

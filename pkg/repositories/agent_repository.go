package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/database"
	"github.com/huddleworks/huddle-engine/pkg/models"
)

// AgentFilter narrows an agent listing. Zero values disable a filter.
type AgentFilter struct {
	Search   string // case-insensitive substring match on name
	Page     int
	PageSize int
}

// AgentRepository defines the interface for agent data access.
// Every method takes the owning user ID; no unscoped row access exists.
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
	Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error)
	List(ctx context.Context, userID string, filter AgentFilter) ([]*models.Agent, int, error)
}

// agentRepository implements AgentRepository using PostgreSQL.
type agentRepository struct {
	db *database.DB
}

// NewAgentRepository creates a new agent repository.
func NewAgentRepository(db *database.DB) AgentRepository {
	return &agentRepository{db: db}
}

// Create inserts a new agent owned by agent.UserID.
func (r *agentRepository) Create(ctx context.Context, agent *models.Agent) error {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	query := `
		INSERT INTO huddle_agents (id, user_id, name, instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		agent.ID,
		agent.UserID,
		agent.Name,
		agent.Instructions,
		agent.CreatedAt,
		agent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// Get retrieves an agent by ID, scoped to its owner.
// A row owned by another user is indistinguishable from a missing row.
func (r *agentRepository) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	query := `
		SELECT id, user_id, name, instructions, created_at, updated_at
		FROM huddle_agents
		WHERE id = $1 AND user_id = $2`

	var agent models.Agent
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&agent.ID,
		&agent.UserID,
		&agent.Name,
		&agent.Instructions,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return &agent, nil
}

// Update replaces the agent's name and instructions, scoped to its owner.
func (r *agentRepository) Update(ctx context.Context, agent *models.Agent) error {
	agent.UpdatedAt = time.Now()

	query := `
		UPDATE huddle_agents
		SET name = $3, instructions = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		agent.ID,
		agent.UserID,
		agent.Name,
		agent.Instructions,
		agent.UpdatedAt,
	).Scan(&agent.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update agent: %w", err)
	}

	return nil
}

// Delete removes an agent by ID, scoped to its owner, and returns the deleted
// row. Deleting an agent still referenced by meetings fails with ErrConflict
// (the foreign key is ON DELETE RESTRICT).
func (r *agentRepository) Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	query := `
		DELETE FROM huddle_agents
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, instructions, created_at, updated_at`

	var agent models.Agent
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&agent.ID,
		&agent.UserID,
		&agent.Name,
		&agent.Instructions,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to delete agent: %w", err)
	}

	return &agent, nil
}

// List returns a page of the user's agents plus the total matching count.
// Ordered by creation time descending, then id descending as a stable
// tie-break. The page and count queries are separate statements; see
// MeetingRepository.List for the documented race.
func (r *agentRepository) List(ctx context.Context, userID string, filter AgentFilter) ([]*models.Agent, int, error) {
	where := "WHERE user_id = $1"
	args := []any{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	countQuery := "SELECT COUNT(*) FROM huddle_agents " + where

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	pageQuery := fmt.Sprintf(`
		SELECT id, user_id, name, instructions, created_at, updated_at
		FROM huddle_agents
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []*models.Agent
	for rows.Next() {
		var agent models.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.UserID,
			&agent.Name,
			&agent.Instructions,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, &agent)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating agents: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agents: %w", err)
	}

	return agents, total, nil
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Ensure agentRepository implements AgentRepository at compile time.
var _ AgentRepository = (*agentRepository)(nil)

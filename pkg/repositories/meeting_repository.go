package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/database"
	"github.com/huddleworks/huddle-engine/pkg/models"
)

// MeetingFilter narrows a meeting listing. Zero values disable a filter.
type MeetingFilter struct {
	Search   string               // case-insensitive substring match on name
	Status   models.MeetingStatus // exact status match
	AgentID  uuid.UUID            // exact agent match (uuid.Nil disables)
	Page     int
	PageSize int
}

// MeetingRepository defines the interface for meeting data access.
// Every method except the System variants takes the owning user ID;
// System variants exist for webhook-driven lifecycle updates, which are
// initiated by the video provider rather than a user.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error)
	Update(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error)
	List(ctx context.Context, userID string, filter MeetingFilter) ([]*models.MeetingWithAgent, int, error)

	GetSystem(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	UpdateLifecycle(ctx context.Context, meeting *models.Meeting) error
}

// meetingRepository implements MeetingRepository using PostgreSQL.
type meetingRepository struct {
	db *database.DB
}

// NewMeetingRepository creates a new meeting repository.
func NewMeetingRepository(db *database.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

// meetingWithAgentColumns is the select list shared by Get and List.
// Duration is computed at the storage boundary and stays NULL until both
// timestamps are set.
const meetingWithAgentColumns = `
	m.id, m.user_id, m.agent_id, m.name, m.status,
	m.started_at, m.ended_at, m.summary, m.transcript_url, m.recording_url,
	m.created_at, m.updated_at,
	a.id, a.user_id, a.name, a.instructions, a.created_at, a.updated_at,
	EXTRACT(EPOCH FROM (m.ended_at - m.started_at))::bigint AS duration_seconds`

func scanMeetingWithAgent(row pgx.Row) (*models.MeetingWithAgent, error) {
	var m models.MeetingWithAgent
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.AgentID,
		&m.Name,
		&m.Status,
		&m.StartedAt,
		&m.EndedAt,
		&m.Summary,
		&m.TranscriptURL,
		&m.RecordingURL,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Agent.ID,
		&m.Agent.UserID,
		&m.Agent.Name,
		&m.Agent.Instructions,
		&m.Agent.CreatedAt,
		&m.Agent.UpdatedAt,
		&m.DurationSeconds,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new meeting owned by meeting.UserID in the upcoming state.
// An unknown agent ID fails with ErrConflict (foreign key violation).
func (r *meetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	now := time.Now()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	if meeting.Status == "" {
		meeting.Status = models.StatusUpcoming
	}

	query := `
		INSERT INTO huddle_meetings (id, user_id, agent_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		meeting.ID,
		meeting.UserID,
		meeting.AgentID,
		meeting.Name,
		meeting.Status,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	return nil
}

// Get retrieves a meeting joined with its agent and derived duration,
// scoped to its owner. A row owned by another user is indistinguishable
// from a missing row.
func (r *meetingRepository) Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM huddle_meetings m
		INNER JOIN huddle_agents a ON a.id = m.agent_id
		WHERE m.id = $1 AND m.user_id = $2`, meetingWithAgentColumns)

	meeting, err := scanMeetingWithAgent(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return meeting, nil
}

// Update replaces the meeting's name and agent, scoped to its owner.
// Status and timestamps are not client-writable and are left untouched.
func (r *meetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	meeting.UpdatedAt = time.Now()

	query := `
		UPDATE huddle_meetings
		SET name = $3, agent_id = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING status, started_at, ended_at, summary, transcript_url, recording_url, created_at`

	err := r.db.QueryRow(ctx, query,
		meeting.ID,
		meeting.UserID,
		meeting.Name,
		meeting.AgentID,
		meeting.UpdatedAt,
	).Scan(
		&meeting.Status,
		&meeting.StartedAt,
		&meeting.EndedAt,
		&meeting.Summary,
		&meeting.TranscriptURL,
		&meeting.RecordingURL,
		&meeting.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	return nil
}

// Delete removes a meeting by ID, scoped to its owner, and returns the
// deleted row.
func (r *meetingRepository) Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error) {
	query := `
		DELETE FROM huddle_meetings
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, agent_id, name, status, started_at, ended_at,
		          summary, transcript_url, recording_url, created_at, updated_at`

	var meeting models.Meeting
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&meeting.ID,
		&meeting.UserID,
		&meeting.AgentID,
		&meeting.Name,
		&meeting.Status,
		&meeting.StartedAt,
		&meeting.EndedAt,
		&meeting.Summary,
		&meeting.TranscriptURL,
		&meeting.RecordingURL,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete meeting: %w", err)
	}

	return &meeting, nil
}

// List returns a page of the user's meetings (joined with agents and derived
// durations) plus the total matching count. Ordered by creation time
// descending, then id descending as a stable tie-break.
//
// The page and count run as two separate statements without a snapshot;
// concurrent writes between them can make total disagree with the page.
// This matches the upstream behavior and is accepted.
func (r *meetingRepository) List(ctx context.Context, userID string, filter MeetingFilter) ([]*models.MeetingWithAgent, int, error) {
	where := "WHERE m.user_id = $1"
	args := []any{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND m.name ILIKE $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND m.status = $%d", len(args))
	}
	if filter.AgentID != uuid.Nil {
		args = append(args, filter.AgentID)
		where += fmt.Sprintf(" AND m.agent_id = $%d", len(args))
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM huddle_meetings m
		INNER JOIN huddle_agents a ON a.id = m.agent_id
		%s`, where)

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM huddle_meetings m
		INNER JOIN huddle_agents a ON a.id = m.agent_id
		%s
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $%d OFFSET $%d`, meetingWithAgentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*models.MeetingWithAgent
	for rows.Next() {
		meeting, err := scanMeetingWithAgent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating meetings: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count meetings: %w", err)
	}

	return meetings, total, nil
}

// GetSystem retrieves a meeting by ID without owner scoping. Reserved for
// webhook-driven lifecycle processing where the caller is the video provider,
// not a user.
func (r *meetingRepository) GetSystem(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	query := `
		SELECT id, user_id, agent_id, name, status, started_at, ended_at,
		       summary, transcript_url, recording_url, created_at, updated_at
		FROM huddle_meetings
		WHERE id = $1`

	var meeting models.Meeting
	err := r.db.QueryRow(ctx, query, id).Scan(
		&meeting.ID,
		&meeting.UserID,
		&meeting.AgentID,
		&meeting.Name,
		&meeting.Status,
		&meeting.StartedAt,
		&meeting.EndedAt,
		&meeting.Summary,
		&meeting.TranscriptURL,
		&meeting.RecordingURL,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return &meeting, nil
}

// UpdateLifecycle writes the lifecycle fields (status, timestamps, summary,
// artifact URLs) in a single atomic statement. Scoped by ID only: lifecycle
// updates are system-initiated.
func (r *meetingRepository) UpdateLifecycle(ctx context.Context, meeting *models.Meeting) error {
	meeting.UpdatedAt = time.Now()

	query := `
		UPDATE huddle_meetings
		SET status = $2, started_at = $3, ended_at = $4, summary = $5,
		    transcript_url = $6, recording_url = $7, updated_at = $8
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		meeting.ID,
		meeting.Status,
		meeting.StartedAt,
		meeting.EndedAt,
		meeting.Summary,
		meeting.TranscriptURL,
		meeting.RecordingURL,
		meeting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update meeting lifecycle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure meetingRepository implements MeetingRepository at compile time.
var _ MeetingRepository = (*meetingRepository)(nil)

package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
)

// MeetingListParams are the caller-supplied listing options.
// Status and AgentID are optional exact-match filters.
type MeetingListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   models.MeetingStatus
	AgentID  uuid.UUID
}

// MeetingService defines the interface for meeting operations.
// The userID argument is always the authenticated caller; ownership is
// server-assigned and never read from input.
type MeetingService interface {
	Create(ctx context.Context, userID string, input *models.MeetingInput) (*models.Meeting, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error)
	Update(ctx context.Context, userID string, id uuid.UUID, input *models.MeetingInput) (*models.Meeting, error)
	Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error)
	List(ctx context.Context, userID string, params MeetingListParams) (*Page[*models.MeetingWithAgent], error)
}

// meetingService implements MeetingService.
type meetingService struct {
	meetingRepo repositories.MeetingRepository
	logger      *zap.Logger
}

// NewMeetingService creates a new meeting service with dependencies.
func NewMeetingService(meetingRepo repositories.MeetingRepository, logger *zap.Logger) MeetingService {
	return &meetingService{
		meetingRepo: meetingRepo,
		logger:      logger,
	}
}

// Create validates the payload and inserts a new meeting owned by the caller
// in the upcoming state.
func (s *meetingService) Create(ctx context.Context, userID string, input *models.MeetingInput) (*models.Meeting, error) {
	if fields := input.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	meeting := &models.Meeting{
		UserID:  userID,
		AgentID: uuid.MustParse(input.AgentID), // validated above
		Name:    input.Name,
		Status:  models.StatusUpcoming,
	}
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	s.logger.Info("Meeting created",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("agent_id", meeting.AgentID.String()),
		zap.String("user_id", userID))
	return meeting, nil
}

// Get returns the caller's meeting joined with its agent and derived duration.
func (s *meetingService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error) {
	return s.meetingRepo.Get(ctx, userID, id)
}

// Update validates the payload and replaces the meeting's name and agent.
func (s *meetingService) Update(ctx context.Context, userID string, id uuid.UUID, input *models.MeetingInput) (*models.Meeting, error) {
	if fields := input.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	meeting := &models.Meeting{
		ID:      id,
		UserID:  userID,
		AgentID: uuid.MustParse(input.AgentID), // validated above
		Name:    input.Name,
	}
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, err
	}

	return meeting, nil
}

// Remove deletes the caller's meeting and returns the deleted row.
func (s *meetingService) Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Meeting removed",
		zap.String("meeting_id", id.String()),
		zap.String("user_id", userID))
	return meeting, nil
}

// List returns a page of the caller's meetings.
func (s *meetingService) List(ctx context.Context, userID string, params MeetingListParams) (*Page[*models.MeetingWithAgent], error) {
	page, pageSize, err := normalizePaging(params.Page, params.PageSize)
	if err != nil {
		return nil, err
	}

	if params.Status != "" && !models.IsValidStatus(params.Status) {
		return nil, &ValidationError{Fields: map[string]string{
			"status": "unknown meeting status",
		}}
	}

	meetings, total, err := s.meetingRepo.List(ctx, userID, repositories.MeetingFilter{
		Search:   params.Search,
		Status:   params.Status,
		AgentID:  params.AgentID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	if meetings == nil {
		meetings = []*models.MeetingWithAgent{}
	}

	return &Page[*models.MeetingWithAgent]{
		Items:      meetings,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Ensure meetingService implements MeetingService at compile time.
var _ MeetingService = (*meetingService)(nil)

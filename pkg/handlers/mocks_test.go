package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/services"
	"github.com/huddleworks/huddle-engine/pkg/video"
)

// mockAgentService is a configurable mock for all handler tests.
type mockAgentService struct {
	agent      *models.Agent
	page       *services.Page[*models.Agent]
	lastParams services.AgentListParams
	err        error
}

func (m *mockAgentService) Create(ctx context.Context, userID string, input *models.AgentInput) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.agent != nil {
		return m.agent, nil
	}
	return &models.Agent{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         input.Name,
		Instructions: input.Instructions,
	}, nil
}

func (m *mockAgentService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.agent != nil {
		return m.agent, nil
	}
	return &models.Agent{ID: id, UserID: userID, Name: "Test Agent"}, nil
}

func (m *mockAgentService) Update(ctx context.Context, userID string, id uuid.UUID, input *models.AgentInput) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Agent{
		ID:           id,
		UserID:       userID,
		Name:         input.Name,
		Instructions: input.Instructions,
	}, nil
}

func (m *mockAgentService) Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Agent{ID: id, UserID: userID, Name: "Deleted Agent"}, nil
}

func (m *mockAgentService) List(ctx context.Context, userID string, params services.AgentListParams) (*services.Page[*models.Agent], error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	if m.page != nil {
		return m.page, nil
	}
	return &services.Page[*models.Agent]{Items: []*models.Agent{}, Total: 0, TotalPages: 0}, nil
}

// mockMeetingService is a configurable mock for all handler tests.
type mockMeetingService struct {
	meeting    *models.Meeting
	withAgent  *models.MeetingWithAgent
	page       *services.Page[*models.MeetingWithAgent]
	lastParams services.MeetingListParams
	err        error
}

func (m *mockMeetingService) Create(ctx context.Context, userID string, input *models.MeetingInput) (*models.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.meeting != nil {
		return m.meeting, nil
	}
	return &models.Meeting{
		ID:      uuid.New(),
		UserID:  userID,
		AgentID: uuid.MustParse(input.AgentID),
		Name:    input.Name,
		Status:  models.StatusUpcoming,
	}, nil
}

func (m *mockMeetingService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.withAgent != nil {
		return m.withAgent, nil
	}
	return &models.MeetingWithAgent{
		Meeting: models.Meeting{ID: id, UserID: userID, Name: "Test Meeting", Status: models.StatusUpcoming},
		Agent:   models.Agent{ID: uuid.New(), UserID: userID, Name: "Test Agent"},
	}, nil
}

func (m *mockMeetingService) Update(ctx context.Context, userID string, id uuid.UUID, input *models.MeetingInput) (*models.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Meeting{
		ID:      id,
		UserID:  userID,
		AgentID: uuid.MustParse(input.AgentID),
		Name:    input.Name,
		Status:  models.StatusUpcoming,
	}, nil
}

func (m *mockMeetingService) Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Meeting{ID: id, UserID: userID, Name: "Deleted Meeting"}, nil
}

func (m *mockMeetingService) List(ctx context.Context, userID string, params services.MeetingListParams) (*services.Page[*models.MeetingWithAgent], error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	if m.page != nil {
		return m.page, nil
	}
	return &services.Page[*models.MeetingWithAgent]{Items: []*models.MeetingWithAgent{}, Total: 0, TotalPages: 0}, nil
}

// mockCallService is a configurable mock for all handler tests.
type mockCallService struct {
	result    *services.JoinResult
	lastEvent *video.Event
	err       error
}

func (m *mockCallService) Join(ctx context.Context, userID string, meetingID uuid.UUID) (*services.JoinResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &services.JoinResult{
		Token:     "test-token",
		CallID:    meetingID.String(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockCallService) HandleEvent(ctx context.Context, event *video.Event) error {
	m.lastEvent = event
	return m.err
}

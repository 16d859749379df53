package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
)

// mockAgentRepo is an in-memory AgentRepository for service tests.
type mockAgentRepo struct {
	agents     map[uuid.UUID]*models.Agent
	listResult []*models.Agent
	listTotal  int
	lastFilter repositories.AgentFilter
	err        error
}

func newMockAgentRepo() *mockAgentRepo {
	return &mockAgentRepo{agents: make(map[uuid.UUID]*models.Agent)}
}

func (m *mockAgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	if m.err != nil {
		return m.err
	}
	m.agents[agent.ID] = agent
	return nil
}

func (m *mockAgentRepo) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	agent, ok := m.agents[id]
	if !ok || agent.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return agent, nil
}

func (m *mockAgentRepo) Update(ctx context.Context, agent *models.Agent) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.agents[agent.ID]
	if !ok || existing.UserID != agent.UserID {
		return apperrors.ErrNotFound
	}
	m.agents[agent.ID] = agent
	return nil
}

func (m *mockAgentRepo) Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	if m.err != nil {
		return nil, m.err
	}
	agent, ok := m.agents[id]
	if !ok || agent.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	delete(m.agents, id)
	return agent, nil
}

func (m *mockAgentRepo) List(ctx context.Context, userID string, filter repositories.AgentFilter) ([]*models.Agent, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.listResult, m.listTotal, nil
}

// mockMeetingRepo is an in-memory MeetingRepository for service tests.
// Guarded by a mutex because the summarizer writes from a goroutine.
type mockMeetingRepo struct {
	mu            sync.Mutex
	meetings      map[uuid.UUID]*models.Meeting
	listResult    []*models.MeetingWithAgent
	listTotal     int
	lastFilter    repositories.MeetingFilter
	lastLifecycle *models.Meeting
	err           error
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{meetings: make(map[uuid.UUID]*models.Meeting)}
}

// stored returns a snapshot of the meeting row for assertions.
func (m *mockMeetingRepo) stored(id uuid.UUID) *models.Meeting {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return nil
	}
	copied := *meeting
	return &copied
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *models.Meeting) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings[meeting.ID] = meeting
	return nil
}

func (m *mockMeetingRepo) Get(ctx context.Context, userID string, id uuid.UUID) (*models.MeetingWithAgent, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok || meeting.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &models.MeetingWithAgent{Meeting: *meeting}, nil
}

func (m *mockMeetingRepo) Update(ctx context.Context, meeting *models.Meeting) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.meetings[meeting.ID]
	if !ok || existing.UserID != meeting.UserID {
		return apperrors.ErrNotFound
	}
	// Lifecycle fields come back from the row, like the SQL RETURNING does.
	meeting.Status = existing.Status
	meeting.StartedAt = existing.StartedAt
	meeting.EndedAt = existing.EndedAt
	meeting.Summary = existing.Summary
	meeting.TranscriptURL = existing.TranscriptURL
	meeting.RecordingURL = existing.RecordingURL
	m.meetings[meeting.ID] = meeting
	return nil
}

func (m *mockMeetingRepo) Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok || meeting.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	delete(m.meetings, id)
	return meeting, nil
}

func (m *mockMeetingRepo) List(ctx context.Context, userID string, filter repositories.MeetingFilter) ([]*models.MeetingWithAgent, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockMeetingRepo) GetSystem(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return meeting, nil
}

func (m *mockMeetingRepo) UpdateLifecycle(ctx context.Context, meeting *models.Meeting) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meetings[meeting.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *meeting
	m.meetings[meeting.ID] = &copied
	m.lastLifecycle = &copied
	return nil
}

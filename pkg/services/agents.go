package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
)

// AgentListParams are the caller-supplied listing options.
type AgentListParams struct {
	Page     int
	PageSize int
	Search   string
}

// AgentService defines the interface for agent operations.
// The userID argument is always the authenticated caller; ownership is
// server-assigned and never read from input.
type AgentService interface {
	Create(ctx context.Context, userID string, input *models.AgentInput) (*models.Agent, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error)
	Update(ctx context.Context, userID string, id uuid.UUID, input *models.AgentInput) (*models.Agent, error)
	Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error)
	List(ctx context.Context, userID string, params AgentListParams) (*Page[*models.Agent], error)
}

// agentService implements AgentService.
type agentService struct {
	agentRepo repositories.AgentRepository
	logger    *zap.Logger
}

// NewAgentService creates a new agent service with dependencies.
func NewAgentService(agentRepo repositories.AgentRepository, logger *zap.Logger) AgentService {
	return &agentService{
		agentRepo: agentRepo,
		logger:    logger,
	}
}

// Create validates the payload and inserts a new agent owned by the caller.
func (s *agentService) Create(ctx context.Context, userID string, input *models.AgentInput) (*models.Agent, error) {
	if fields := input.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	agent := &models.Agent{
		UserID:       userID,
		Name:         input.Name,
		Instructions: input.Instructions,
	}
	if err := s.agentRepo.Create(ctx, agent); err != nil {
		return nil, err
	}

	s.logger.Info("Agent created",
		zap.String("agent_id", agent.ID.String()),
		zap.String("user_id", userID))
	return agent, nil
}

// Get returns the caller's agent by ID.
func (s *agentService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	return s.agentRepo.Get(ctx, userID, id)
}

// Update validates the payload and replaces the agent's name and instructions.
func (s *agentService) Update(ctx context.Context, userID string, id uuid.UUID, input *models.AgentInput) (*models.Agent, error) {
	if fields := input.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	agent := &models.Agent{
		ID:           id,
		UserID:       userID,
		Name:         input.Name,
		Instructions: input.Instructions,
	}
	if err := s.agentRepo.Update(ctx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}

// Remove deletes the caller's agent and returns the deleted row.
func (s *agentService) Remove(ctx context.Context, userID string, id uuid.UUID) (*models.Agent, error) {
	agent, err := s.agentRepo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Agent removed",
		zap.String("agent_id", id.String()),
		zap.String("user_id", userID))
	return agent, nil
}

// List returns a page of the caller's agents.
func (s *agentService) List(ctx context.Context, userID string, params AgentListParams) (*Page[*models.Agent], error) {
	page, pageSize, err := normalizePaging(params.Page, params.PageSize)
	if err != nil {
		return nil, err
	}

	agents, total, err := s.agentRepo.List(ctx, userID, repositories.AgentFilter{
		Search:   params.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	if agents == nil {
		agents = []*models.Agent{}
	}

	return &Page[*models.Agent]{
		Items:      agents,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Ensure agentService implements AgentService at compile time.
var _ AgentService = (*agentService)(nil)

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/auth"
	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/services"
)

// AgentsHandler handles agent CRUD HTTP requests.
type AgentsHandler struct {
	agentService services.AgentService
	logger       *zap.Logger
}

// NewAgentsHandler creates a new agents handler.
func NewAgentsHandler(agentService services.AgentService, logger *zap.Logger) *AgentsHandler {
	return &AgentsHandler{
		agentService: agentService,
		logger:       logger,
	}
}

// RegisterRoutes registers the agents handler's routes on the given mux.
func (h *AgentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/agents", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/agents", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/agents/{aid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/agents/{aid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/agents/{aid}", authMiddleware.RequireAuth(h.Remove))
}

// Create handles POST /api/agents
func (h *AgentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input models.AgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequestBody(w)
		return
	}

	agent, err := h.agentService.Create(r.Context(), userID, &input)
	if err != nil {
		h.serviceError(w, err, "agent")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, agent); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/agents/{aid}
func (h *AgentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	agentID, ok := ParseAgentID(w, r, h.logger)
	if !ok {
		return
	}

	agent, err := h.agentService.Get(r.Context(), userID, agentID)
	if err != nil {
		h.serviceError(w, err, "agent")
		return
	}

	if err := WriteJSON(w, http.StatusOK, agent); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/agents/{aid}
// Replaces the agent's name and instructions with the full validated payload.
func (h *AgentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	agentID, ok := ParseAgentID(w, r, h.logger)
	if !ok {
		return
	}

	var input models.AgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequestBody(w)
		return
	}

	agent, err := h.agentService.Update(r.Context(), userID, agentID, &input)
	if err != nil {
		h.serviceError(w, err, "agent")
		return
	}

	if err := WriteJSON(w, http.StatusOK, agent); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Remove handles DELETE /api/agents/{aid}
// Returns the deleted row. Agents still referenced by meetings cannot be
// deleted and produce a 409.
func (h *AgentsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	agentID, ok := ParseAgentID(w, r, h.logger)
	if !ok {
		return
	}

	agent, err := h.agentService.Remove(r.Context(), userID, agentID)
	if err != nil {
		h.serviceError(w, err, "agent")
		return
	}

	if err := WriteJSON(w, http.StatusOK, agent); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/agents
// Query parameters: page, page_size, search.
func (h *AgentsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	page, pageSize, ok := parsePagingQuery(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.agentService.List(r.Context(), userID, services.AgentListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		h.serviceError(w, err, "agent")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *AgentsHandler) badRequestBody(w http.ResponseWriter) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *AgentsHandler) serviceError(w http.ResponseWriter, err error, entity string) {
	writeServiceError(w, err, entity, h.logger)
}

// requireUserID extracts the authenticated user ID set by the auth middleware.
// Writes a 401 when absent.
func requireUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return userID, true
}

// writeServiceError maps service-layer errors to HTTP responses.
// Not-found and not-owned are deliberately the same 404.
func writeServiceError(w http.ResponseWriter, err error, entity string, logger *zap.Logger) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if err := ValidationErrorResponse(w, validationErr.Fields); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	case errors.Is(err, apperrors.ErrNotFound):
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", capitalize(entity)+" not found"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	case errors.Is(err, apperrors.ErrConflict):
		if err := ErrorResponse(w, http.StatusConflict, "conflict", "Operation conflicts with related data"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	case errors.Is(err, apperrors.ErrInvalidTransition):
		if err := ErrorResponse(w, http.StatusConflict, "invalid_transition", "Meeting is not in a valid state for this operation"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	default:
		logger.Error("Service operation failed", zap.String("entity", entity), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/auth"
	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/services"
)

// MeetingsHandler handles meeting CRUD HTTP requests.
type MeetingsHandler struct {
	meetingService services.MeetingService
	logger         *zap.Logger
}

// NewMeetingsHandler creates a new meetings handler.
func NewMeetingsHandler(meetingService services.MeetingService, logger *zap.Logger) *MeetingsHandler {
	return &MeetingsHandler{
		meetingService: meetingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the meetings handler's routes on the given mux.
func (h *MeetingsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/meetings", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/meetings", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/meetings/{mid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/meetings/{mid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/meetings/{mid}", authMiddleware.RequireAuth(h.Remove))
}

// Create handles POST /api/meetings
// New meetings always start in the upcoming state.
func (h *MeetingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input models.MeetingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequestBody(w)
		return
	}

	meeting, err := h.meetingService.Create(r.Context(), userID, &input)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, meeting); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/meetings/{mid}
// The response embeds the meeting's agent and a derived duration.
func (h *MeetingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	meetingID, ok := ParseMeetingID(w, r, h.logger)
	if !ok {
		return
	}

	meeting, err := h.meetingService.Get(r.Context(), userID, meetingID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, meeting); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/meetings/{mid}
// Only the name and agent can change here; status and call timestamps are
// owned by the call lifecycle.
func (h *MeetingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	meetingID, ok := ParseMeetingID(w, r, h.logger)
	if !ok {
		return
	}

	var input models.MeetingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequestBody(w)
		return
	}

	meeting, err := h.meetingService.Update(r.Context(), userID, meetingID, &input)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, meeting); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Remove handles DELETE /api/meetings/{mid}
func (h *MeetingsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	meetingID, ok := ParseMeetingID(w, r, h.logger)
	if !ok {
		return
	}

	meeting, err := h.meetingService.Remove(r.Context(), userID, meetingID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, meeting); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/meetings
// Query parameters: page, page_size, search, status, agent_id.
func (h *MeetingsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	page, pageSize, ok := parsePagingQuery(w, r, h.logger)
	if !ok {
		return
	}

	params := services.MeetingListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
		Status:   models.MeetingStatus(r.URL.Query().Get("status")),
	}

	if raw := r.URL.Query().Get("agent_id"); raw != "" {
		agentID, err := uuid.Parse(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid agent_id parameter"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		params.AgentID = agentID
	}

	result, err := h.meetingService.List(r.Context(), userID, params)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *MeetingsHandler) badRequestBody(w http.ResponseWriter) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *MeetingsHandler) serviceError(w http.ResponseWriter, err error) {
	writeServiceError(w, err, "meeting", h.logger)
}

package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/auth"
	"github.com/huddleworks/huddle-engine/pkg/config"
	"github.com/huddleworks/huddle-engine/pkg/services"
	"github.com/huddleworks/huddle-engine/pkg/video"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// CallsHandler handles call lobby joins and provider webhook events.
type CallsHandler struct {
	callService services.CallService
	cfg         *config.Config
	logger      *zap.Logger
}

// NewCallsHandler creates a new calls handler.
func NewCallsHandler(callService services.CallService, cfg *config.Config, logger *zap.Logger) *CallsHandler {
	return &CallsHandler{
		callService: callService,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterRoutes registers the calls handler's routes on the given mux.
// The webhook endpoint is authenticated by signature, not by JWT.
func (h *CallsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/calls/{mid}/join", authMiddleware.RequireAuth(h.Join))
	mux.HandleFunc("POST /api/calls/webhook", h.Webhook)
}

// Join handles POST /api/calls/{mid}/join
// Issues a short-lived participant token for the caller's own meeting.
func (h *CallsHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	meetingID, ok := ParseMeetingID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.callService.Join(r.Context(), userID, meetingID)
	if err != nil {
		writeServiceError(w, err, "meeting", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Webhook handles POST /api/calls/webhook
// Verifies the provider's HMAC signature before applying the event.
func (h *CallsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to read request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if !video.VerifySignature(body, r.Header.Get("X-Signature"), h.cfg.Video.APISecret) {
		h.logger.Warn("Webhook signature verification failed")
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid webhook signature"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	event, err := video.ParseEvent(body)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid webhook payload"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.callService.HandleEvent(r.Context(), event); err != nil {
		writeServiceError(w, err, "meeting", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

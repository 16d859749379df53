package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus is the lifecycle state of a meeting. Transitions are driven
// by call-lifecycle events from the video provider; the CRUD surface only
// reads and filters on status.
type MeetingStatus string

const (
	StatusUpcoming   MeetingStatus = "upcoming"
	StatusActive     MeetingStatus = "active"
	StatusCompleted  MeetingStatus = "completed"
	StatusProcessing MeetingStatus = "processing"
	StatusCancelled  MeetingStatus = "cancelled"
)

// ValidStatuses contains all valid meeting status values.
var ValidStatuses = []MeetingStatus{
	StatusUpcoming,
	StatusActive,
	StatusCompleted,
	StatusProcessing,
	StatusCancelled,
}

// IsValidStatus checks if the given status is a member of the enum.
func IsValidStatus(status MeetingStatus) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether a meeting may move from one status to another.
// upcoming -> active or cancelled; active -> processing or completed;
// processing -> completed. Completed and cancelled are terminal.
func CanTransition(from, to MeetingStatus) bool {
	switch from {
	case StatusUpcoming:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusProcessing || to == StatusCompleted
	case StatusProcessing:
		return to == StatusCompleted
	default:
		return false
	}
}

// Meeting represents a scheduled call joining a user with an agent.
type Meeting struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	AgentID       uuid.UUID     `json:"agent_id"`
	Name          string        `json:"name"`
	Status        MeetingStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at"`
	Summary       *string       `json:"summary"`
	TranscriptURL *string       `json:"transcript_url"`
	RecordingURL  *string       `json:"recording_url"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MeetingWithAgent is a meeting joined with its agent and the derived call
// duration. DurationSeconds is nil until both started_at and ended_at are set.
type MeetingWithAgent struct {
	Meeting
	Agent           Agent  `json:"agent"`
	DurationSeconds *int64 `json:"duration_seconds"`
}

// MeetingInput is the client-supplied payload for creating or replacing a
// meeting. Status and timestamps are never client-controlled.
type MeetingInput struct {
	Name    string `json:"name"`
	AgentID string `json:"agent_id"`
}

// Validate checks the payload and returns per-field error messages.
// A nil map means the payload is valid.
func (in *MeetingInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Name == "" {
		errs["name"] = "name is required"
	}
	if in.AgentID == "" {
		errs["agent_id"] = "agent_id is required"
	} else if _, err := uuid.Parse(in.AgentID); err != nil {
		errs["agent_id"] = "agent_id must be a valid UUID"
	}
	return errs.OrNil()
}

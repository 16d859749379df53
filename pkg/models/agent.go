package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent represents an AI meeting participant owned by a user.
type Agent struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AgentInput is the client-supplied payload for creating or replacing an agent.
// The owning user is never part of the payload; it is assigned from the
// authenticated caller.
type AgentInput struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// Validate checks the payload and returns per-field error messages.
// A nil map means the payload is valid.
func (in *AgentInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Name == "" {
		errs["name"] = "name is required"
	}
	if in.Instructions == "" {
		errs["instructions"] = "instructions is required"
	}
	return errs.OrNil()
}

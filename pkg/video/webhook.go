package video

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Call lifecycle event types sent by the video provider.
const (
	EventSessionStarted     = "call.session_started"
	EventSessionEnded       = "call.session_ended"
	EventTranscriptionReady = "call.transcription_ready"
	EventCancelled          = "call.cancelled"
)

// Event is a call-lifecycle webhook payload. CallID equals the meeting ID.
type Event struct {
	Type          string `json:"type"`
	CallID        string `json:"call_id"`
	RecordingURL  string `json:"recording_url,omitempty"`
	TranscriptURL string `json:"transcript_url,omitempty"`
}

// ParseEvent decodes a webhook body into an Event.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook event missing type")
	}
	if event.CallID == "" {
		return nil, fmt.Errorf("webhook event missing call_id")
	}
	return &event, nil
}

// VerifySignature checks the hex-encoded HMAC-SHA256 signature the provider
// sends in the X-Signature header against the raw request body.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/config"
	"github.com/huddleworks/huddle-engine/pkg/services"
	"github.com/huddleworks/huddle-engine/pkg/video"
)

const testWebhookSecret = "test-webhook-secret"

func newCallsHandler(svc services.CallService) *CallsHandler {
	cfg := &config.Config{}
	cfg.Video.APISecret = testWebhookSecret
	return NewCallsHandler(svc, cfg, zap.NewNop())
}

func signBody(body string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCallsHandler_Join_Success(t *testing.T) {
	meetingID := uuid.New()
	handler := newCallsHandler(&mockCallService{})

	req := httptest.NewRequest(http.MethodPost, "/api/calls/"+meetingID.String()+"/join", nil)
	req.SetPathValue("mid", meetingID.String())
	req = authedRequest(req, "user-123")

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result services.JoinResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a participant token")
	}
	if result.CallID != meetingID.String() {
		t.Errorf("expected call_id %s, got %s", meetingID, result.CallID)
	}
}

func TestCallsHandler_Join_FinishedMeeting(t *testing.T) {
	handler := newCallsHandler(&mockCallService{err: apperrors.ErrConflict})

	meetingID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/calls/"+meetingID.String()+"/join", nil)
	req.SetPathValue("mid", meetingID.String())
	req = authedRequest(req, "user-123")

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestCallsHandler_Join_Unauthenticated(t *testing.T) {
	handler := newCallsHandler(&mockCallService{})

	meetingID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/calls/"+meetingID.String()+"/join", nil)
	req.SetPathValue("mid", meetingID.String())

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestCallsHandler_Webhook_Success(t *testing.T) {
	svc := &mockCallService{}
	handler := newCallsHandler(svc)

	meetingID := uuid.New()
	body := `{"type":"call.session_started","call_id":"` + meetingID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))
	req.Header.Set("X-Signature", signBody(body))

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastEvent == nil {
		t.Fatal("expected the event to reach the call service")
	}
	if svc.lastEvent.Type != video.EventSessionStarted {
		t.Errorf("expected event type %q, got %q", video.EventSessionStarted, svc.lastEvent.Type)
	}
	if svc.lastEvent.CallID != meetingID.String() {
		t.Errorf("expected call_id %s, got %s", meetingID, svc.lastEvent.CallID)
	}
}

func TestCallsHandler_Webhook_BadSignature(t *testing.T) {
	svc := &mockCallService{}
	handler := newCallsHandler(svc)

	body := `{"type":"call.session_started","call_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))
	req.Header.Set("X-Signature", "deadbeef")

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if svc.lastEvent != nil {
		t.Error("event must not be processed on signature failure")
	}
}

func TestCallsHandler_Webhook_MissingSignature(t *testing.T) {
	handler := newCallsHandler(&mockCallService{})

	body := `{"type":"call.session_started","call_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestCallsHandler_Webhook_MalformedPayload(t *testing.T) {
	handler := newCallsHandler(&mockCallService{})

	body := `{"type":"call.session_started"}` // missing call_id
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))
	req.Header.Set("X-Signature", signBody(body))

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestCallsHandler_Webhook_InvalidTransition(t *testing.T) {
	handler := newCallsHandler(&mockCallService{err: apperrors.ErrInvalidTransition})

	body := `{"type":"call.session_ended","call_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))
	req.Header.Set("X-Signature", signBody(body))

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestCallsHandler_Webhook_UnknownMeeting(t *testing.T) {
	handler := newCallsHandler(&mockCallService{err: apperrors.ErrNotFound})

	body := `{"type":"call.session_started","call_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls/webhook", strings.NewReader(body))
	req.Header.Set("X-Signature", signBody(body))

	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

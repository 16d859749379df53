package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/apperrors"
	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
	"github.com/huddleworks/huddle-engine/pkg/video"
)

// JoinResult is returned when a user joins a call lobby.
type JoinResult struct {
	Token     string    `json:"token"`
	CallID    string    `json:"call_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CallService drives the meeting lifecycle: lobby joins and webhook-delivered
// call events from the video provider. It is the only writer of meeting
// status; the CRUD surface stays a passive reader.
type CallService interface {
	// Join issues a participant token for the caller's meeting.
	Join(ctx context.Context, userID string, meetingID uuid.UUID) (*JoinResult, error)

	// HandleEvent applies a call-lifecycle event to the referenced meeting.
	HandleEvent(ctx context.Context, event *video.Event) error
}

// callService implements CallService.
type callService struct {
	meetingRepo repositories.MeetingRepository
	issuer      *video.TokenIssuer
	summarizer  *Summarizer
	cache       *redis.Client // optional; nil disables token caching
	logger      *zap.Logger
}

// NewCallService creates a new call service with dependencies.
// cache may be nil when Redis is not configured.
func NewCallService(
	meetingRepo repositories.MeetingRepository,
	issuer *video.TokenIssuer,
	summarizer *Summarizer,
	cache *redis.Client,
	logger *zap.Logger,
) CallService {
	return &callService{
		meetingRepo: meetingRepo,
		issuer:      issuer,
		summarizer:  summarizer,
		cache:       cache,
		logger:      logger,
	}
}

// Join issues a participant token for the caller's meeting. Completed and
// cancelled meetings cannot be joined. Issued tokens are cached in Redis for
// their lifetime so repeated lobby visits reuse the same token.
func (s *callService) Join(ctx context.Context, userID string, meetingID uuid.UUID) (*JoinResult, error) {
	meeting, err := s.meetingRepo.Get(ctx, userID, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status == models.StatusCompleted || meeting.Status == models.StatusCancelled {
		return nil, apperrors.ErrConflict
	}

	cacheKey := fmt.Sprintf("call:token:%s:%s", meetingID, userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			ttl, err := s.cache.TTL(ctx, cacheKey).Result()
			if err == nil && ttl > 0 {
				return &JoinResult{
					Token:     cached,
					CallID:    meetingID.String(),
					ExpiresAt: time.Now().Add(ttl),
				}, nil
			}
		}
	}

	token, err := s.issuer.IssueParticipantToken(meetingID, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, token, s.issuer.TTL()).Err(); err != nil {
			s.logger.Warn("Failed to cache call token", zap.Error(err))
		}
	}

	s.logger.Info("Issued call token",
		zap.String("meeting_id", meetingID.String()),
		zap.String("user_id", userID))

	return &JoinResult{
		Token:     token,
		CallID:    meetingID.String(),
		ExpiresAt: time.Now().Add(s.issuer.TTL()),
	}, nil
}

// HandleEvent applies a call-lifecycle event. Transitions outside the status
// machine fail with ErrInvalidTransition; events for unknown meetings fail
// with ErrNotFound. Unknown event types are acknowledged and ignored so the
// provider does not retry them.
func (s *callService) HandleEvent(ctx context.Context, event *video.Event) error {
	meetingID, err := uuid.Parse(event.CallID)
	if err != nil {
		return fmt.Errorf("invalid call_id %q: %w", event.CallID, err)
	}

	meeting, err := s.meetingRepo.GetSystem(ctx, meetingID)
	if err != nil {
		return err
	}

	now := time.Now()

	switch event.Type {
	case video.EventSessionStarted:
		if err := s.transition(meeting, models.StatusActive); err != nil {
			return err
		}
		meeting.StartedAt = &now

	case video.EventSessionEnded:
		if err := s.transition(meeting, models.StatusProcessing); err != nil {
			return err
		}
		meeting.EndedAt = &now
		if event.RecordingURL != "" {
			meeting.RecordingURL = &event.RecordingURL
		}

	case video.EventCancelled:
		if err := s.transition(meeting, models.StatusCancelled); err != nil {
			return err
		}

	case video.EventTranscriptionReady:
		if meeting.Status != models.StatusProcessing {
			return apperrors.ErrInvalidTransition
		}
		if event.TranscriptURL != "" {
			meeting.TranscriptURL = &event.TranscriptURL
		}
		if err := s.meetingRepo.UpdateLifecycle(ctx, meeting); err != nil {
			return err
		}
		// Completion happens out of band once the summary is ready.
		s.summarizer.CompleteAsync(meeting)
		return nil

	default:
		s.logger.Debug("Ignoring unknown call event",
			zap.String("type", event.Type),
			zap.String("call_id", event.CallID))
		return nil
	}

	if err := s.meetingRepo.UpdateLifecycle(ctx, meeting); err != nil {
		return err
	}

	s.logger.Info("Meeting status updated",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("status", string(meeting.Status)),
		zap.String("event", event.Type))
	return nil
}

// transition moves the meeting to the target status or fails with
// ErrInvalidTransition.
func (s *callService) transition(meeting *models.Meeting, to models.MeetingStatus) error {
	if !models.CanTransition(meeting.Status, to) {
		s.logger.Warn("Rejected meeting status transition",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("from", string(meeting.Status)),
			zap.String("to", string(to)))
		return apperrors.ErrInvalidTransition
	}
	meeting.Status = to
	return nil
}

// Ensure callService implements CallService at compile time.
var _ CallService = (*callService)(nil)

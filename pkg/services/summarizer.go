package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/models"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
)

const summarySystemPrompt = `You summarize meeting transcripts. Produce a short
markdown summary: one overview paragraph, then a bulleted list of key points
and decisions. Do not invent content that is not in the transcript.`

// maxTranscriptBytes caps how much transcript is downloaded and prompted.
const maxTranscriptBytes = 512 * 1024

// SummaryGenerator produces a completion from a prompt. Satisfied by
// llm.Client; abstracted for testing.
type SummaryGenerator interface {
	GenerateResponse(ctx context.Context, prompt, systemMessage string) (string, error)
}

// Summarizer resolves meetings from processing to completed. When an LLM
// endpoint is configured it downloads the transcript and stores a generated
// summary; otherwise meetings complete without one.
type Summarizer struct {
	meetingRepo repositories.MeetingRepository
	generator   SummaryGenerator // nil disables summarization
	httpClient  *http.Client
	timeout     time.Duration
	logger      *zap.Logger
}

// NewSummarizer creates a summarizer. generator may be nil when no LLM
// endpoint is configured.
func NewSummarizer(meetingRepo repositories.MeetingRepository, generator SummaryGenerator, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		meetingRepo: meetingRepo,
		generator:   generator,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		timeout:     2 * time.Minute,
		logger:      logger,
	}
}

// CompleteAsync finishes the meeting in the background: generate a summary if
// possible, then mark the meeting completed. Fire-and-forget; failures are
// logged and leave the meeting in processing so a webhook redelivery can
// retry.
func (s *Summarizer) CompleteAsync(meeting *models.Meeting) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.Complete(ctx, meeting); err != nil {
			s.logger.Error("Failed to complete meeting",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
		}
	}()
}

// Complete generates the summary (when configured) and transitions the
// meeting from processing to completed in a single lifecycle write.
func (s *Summarizer) Complete(ctx context.Context, meeting *models.Meeting) error {
	if s.generator != nil && meeting.TranscriptURL != nil {
		transcript, err := s.fetchTranscript(ctx, *meeting.TranscriptURL)
		if err != nil {
			return err
		}

		summary, err := s.generator.GenerateResponse(ctx, transcript, summarySystemPrompt)
		if err != nil {
			return fmt.Errorf("failed to generate summary: %w", err)
		}
		meeting.Summary = &summary
	}

	meeting.Status = models.StatusCompleted
	if err := s.meetingRepo.UpdateLifecycle(ctx, meeting); err != nil {
		return err
	}

	s.logger.Info("Meeting completed",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Bool("summarized", meeting.Summary != nil))
	return nil
}

// fetchTranscript downloads the transcript, capped at maxTranscriptBytes.
func (s *Summarizer) fetchTranscript(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build transcript request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	return string(body), nil
}

package transcription

import (
	"context"
	"fmt"
	"net/http"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/storage"
	"github.com/taskquest-dev/taskquest/internal/usecase/meeting"
	"github.com/taskquest-dev/taskquest/pkg/config"
)

// Client transcribes meeting audio with AssemblyAI. It implements
// meeting.TranscriptCapture: Start only verifies the meeting has audio
// to work with, Stop runs the actual transcription.
type Client struct {
	sdk          *aai.Client
	storage      *storage.MinIOClient
	languageCode string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates an AssemblyAI-backed transcript capture
func NewClient(cfg *config.AssemblyAIConfig, store *storage.MinIOClient, logger *zap.Logger) *Client {
	return &Client{
		sdk:          aai.NewClient(cfg.APIKey),
		storage:      store,
		languageCode: cfg.LanguageCode,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Start verifies the meeting has an uploaded audio object. Recording
// happens client-side; the server only tracks the session.
func (c *Client) Start(_ context.Context, m *entities.Meeting) error {
	if m.AudioObjectKey == nil || *m.AudioObjectKey == "" {
		return fmt.Errorf("meeting %s has no audio object", m.ID)
	}
	return nil
}

// Stop downloads the meeting audio from object storage, uploads it to
// AssemblyAI and transcribes it synchronously. Transient failures are
// retried with exponential backoff.
func (c *Client) Stop(ctx context.Context, m *entities.Meeting) (*meeting.CaptureResult, error) {
	if m.AudioObjectKey == nil || *m.AudioObjectKey == "" {
		return nil, fmt.Errorf("meeting %s has no audio object", m.ID)
	}

	audioURL, err := c.storage.GetFileURL(ctx, *m.AudioObjectKey, 1*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to presign audio object: %w", err)
	}

	var result *meeting.CaptureResult
	transcribeFn := func() error {
		resp, err := c.httpClient.Get(audioURL)
		if err != nil {
			return fmt.Errorf("failed to download audio: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("storage returned status %d", resp.StatusCode)
		}

		uploadURL, err := c.sdk.Upload(ctx, resp.Body)
		if err != nil {
			return fmt.Errorf("failed to upload to AssemblyAI: %w", err)
		}

		params := &aai.TranscriptOptionalParams{
			SpeakerLabels: aai.Bool(true),
		}
		if c.languageCode != "" {
			params.LanguageCode = aai.TranscriptLanguageCode(c.languageCode)
		}

		transcript, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
		if err != nil {
			return fmt.Errorf("transcription request failed: %w", err)
		}

		if transcript.Status == aai.TranscriptStatusError {
			errMsg := "transcription failed"
			if transcript.Error != nil {
				errMsg = *transcript.Error
			}
			return backoff.Permanent(fmt.Errorf("assemblyai error: %s", errMsg))
		}

		capture := &meeting.CaptureResult{}
		if transcript.Text != nil {
			capture.Transcript = *transcript.Text
		}
		if transcript.AudioDuration != nil {
			capture.DurationSeconds = int(*transcript.AudioDuration)
		}
		result = capture
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 5 * time.Minute

	if err := backoff.Retry(transcribeFn, backoff.WithContext(bo, ctx)); err != nil {
		if c.logger != nil {
			c.logger.Error("transcription failed after retries",
				zap.String("meeting_id", m.ID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("transcription completed",
			zap.String("meeting_id", m.ID.String()),
			zap.Int("duration_seconds", result.DurationSeconds),
			zap.Int("transcript_length", len(result.Transcript)),
		)
	}

	return result, nil
}

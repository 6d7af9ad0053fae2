package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/usecase/meeting"
	"github.com/taskquest-dev/taskquest/pkg/config"
)

const extractionPrompt = `Analyze the following meeting transcript. Return ONLY a JSON object with this shape:
{
  "summary": "2-3 sentence summary of the meeting",
  "action_items": [
    {
      "title": "short imperative task title",
      "description": "optional context for the task",
      "priority": "low|medium|high|urgent",
      "estimated_time_minutes": 30
    }
  ]
}
Omit fields you cannot infer. Do not invent action items that were not discussed.

Transcript:
%s`

// Client extracts a summary and action items from a meeting transcript
// using an OpenAI-compatible chat completions endpoint. It implements
// meeting.ActionExtractor.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an extraction client from config
func NewClient(cfg *config.ExtractionConfig, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// chatResponse is a minimal response shape
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractionPayload is the JSON shape the model is asked to produce
type extractionPayload struct {
	Summary     string                `json:"summary"`
	ActionItems []entities.ActionItem `json:"action_items"`
}

// Extract sends the transcript to the LLM and parses the structured
// response. Transient failures are retried with exponential backoff.
func (c *Client) Extract(ctx context.Context, transcript string) (*meeting.ExtractionResult, error) {
	var result *meeting.ExtractionResult

	extractFn := func() error {
		content, err := c.complete(ctx, fmt.Sprintf(extractionPrompt, transcript))
		if err != nil {
			return err
		}

		payload, err := parseExtraction(content)
		if err != nil {
			// A malformed completion will not fix itself on retry of
			// the same content, but a fresh completion might.
			return err
		}

		result = &meeting.ExtractionResult{
			Summary: payload.Summary,
			Items:   payload.ActionItems,
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(extractFn, backoff.WithContext(bo, ctx)); err != nil {
		if c.logger != nil {
			c.logger.Error("extraction failed after retries", zap.Error(err))
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("transcript extraction completed",
			zap.Int("action_items", len(result.Items)),
			zap.Int("summary_length", len(result.Summary)),
		)
	}

	return result, nil
}

// complete sends a single chat completion request and returns the
// assistant content
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []map[string]string{{"role": "user", "content": prompt}},
		Temperature: 0.3,
		MaxTokens:   4000,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("extraction provider returned status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from extraction provider")
	}
	return cr.Choices[0].Message.Content, nil
}

// parseExtraction parses the model output into the expected payload
func parseExtraction(content string) (*extractionPayload, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if payload.ActionItems == nil {
		payload.ActionItems = make([]entities.ActionItem, 0)
	}
	return &payload, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

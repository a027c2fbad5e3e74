package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/WWJD/logger"
	"github.com/WWJD/models"
)

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	ModerationModel string
	MaxTokens       int
	MaxRetries      int
	Timeout         time.Duration
}

// OpenAIClient talks to the moderation and chat completion endpoints. It is
// both a ModerationClassifier and a GuidanceGenerator.
type OpenAIClient struct {
	log        *logger.Logger
	cfg        OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig, log *logger.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.ModerationModel == "" {
		cfg.ModerationModel = "omni-moderation-latest"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		log:        log.With("service", "OpenAIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
	}
	return false
}

func (c *OpenAIClient) doOnce(ctx context.Context, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// do posts body to path and decodes the reply into out. Retries happen only
// when MaxRetries is above zero.
func (c *OpenAIClient) do(ctx context.Context, path string, body any, out any) error {
	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}
		if attempt >= c.cfg.MaxRetries || !isRetryable(err) {
			return err
		}

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

func (c *OpenAIClient) Classify(ctx context.Context, text string) (ModerationClassification, error) {
	var resp moderationResponse
	err := c.do(ctx, "/v1/moderations", moderationRequest{Model: c.cfg.ModerationModel, Input: text}, &resp)
	if err != nil {
		return ModerationClassification{}, err
	}
	if len(resp.Results) == 0 {
		return ModerationClassification{}, fmt.Errorf("openai moderation returned no results")
	}
	result := resp.Results[0]
	return ModerationClassification{Flagged: result.Flagged, Categories: result.Categories}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, situation string) (models.Guidance, error) {
	var resp chatResponse
	err := c.do(ctx, "/v1/chat/completions", chatRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: guidanceSystemPrompt},
			{Role: "user", Content: guidanceUserPrompt(situation)},
		},
	}, &resp)
	if err != nil {
		return models.Guidance{}, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return models.Guidance{}, fmt.Errorf("no response from openai")
	}
	return ParseGuidance(resp.Choices[0].Message.Content), nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/util"

	"github.com/go-resty/resty/v2"
)

// Completer is anything that turns a system prompt and a user prompt into model text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	config config.AIConfig
	client *resty.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &AIService{config: cfg, client: client}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if s.config.BaseURL == "" {
		return "", fmt.Errorf("%w: ai base url is not configured", util.ErrUpstream)
	}

	body := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	var out ChatCompletionResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %w", util.ErrUpstream, err)
	}
	if resp.IsError() {
		msg := resp.String()
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: ai api status %d: %s", util.ErrUpstream, resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: ai api returned no content", util.ErrUpstream)
	}
	return out.Choices[0].Message.Content, nil
}

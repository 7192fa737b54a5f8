package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/inkforge/outline-council/internal/config"
	"github.com/tidwall/gjson"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

type OpenRouterServiceInterface interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// OpenRouterService talks to any OpenAI-compatible model slug exposed by
// OpenRouter (e.g. "openai/gpt-4o-mini", "anthropic/claude-3.5-sonnet").
type OpenRouterService struct {
	APIKey string
	client *resty.Client
}

func NewOpenRouterService() *OpenRouterService {
	return &OpenRouterService{
		APIKey: config.LoadOpenRouterConfig().APIKey,
		client: resty.New(),
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

// Generate performs a single chat-completion attempt. Retry policy lives
// in the review dispatcher, not here.
func (s *OpenRouterService) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an experienced developmental editor reviewing creative-writing outlines."},
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}

	if resp.StatusCode() >= 400 {
		log.Printf("openrouter %s returned HTTP %d: %s", model, resp.StatusCode(), resp.String())
		return "", fmt.Errorf("openrouter returned HTTP %d", resp.StatusCode())
	}

	if apiErr := gjson.Get(resp.String(), "error.message"); apiErr.Exists() {
		return "", fmt.Errorf("openrouter error: %s", apiErr.String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}
	return text, nil
}

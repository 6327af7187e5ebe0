package aiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/utils"
)

// Client generates structured JSON content from an LLM chat-completion
// endpoint. Implementations must return the parsed top-level object.
type Client interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type client struct {
	log     *logger.Logger
	resty   *resty.Client
	baseURL string
	apiKey  string
	model   string
}

func New(log *logger.Logger) (Client, error) {
	apiKey := os.Getenv("AI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}

	baseURL := utils.GetEnv("AI_BASE_URL", "https://api.openai.com", log)
	model := utils.GetEnv("AI_MODEL", "gpt-4o-mini", log)
	timeoutSec := utils.GetEnvAsInt("AI_TIMEOUT_SECONDS", 120, log)

	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(time.Duration(timeoutSec) * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &client{
		log:     log.With("service", "AIClient"),
		resty:   r,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		},
	}

	var parsed chatResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("ai generate call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ai generate returned %d: %s", resp.StatusCode(), resp.String())
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("ai generate returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("ai generate returned non-JSON content: %w", err)
	}
	return out, nil
}

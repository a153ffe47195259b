package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	defaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is used when OLLAMA_MODEL is unset
	DefaultOllamaModel = "llama3.2"
)

const ollamaSystemPrompt = "You identify songs from loose descriptions. Return ONLY a valid JSON object matching the requested format. No conversational text."

// OllamaClient asks a local Ollama instance for schema-constrained JSON
type OllamaClient struct {
	client  *resty.Client
	baseURL string
	model   string
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   any             `json:"format,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// NewOllamaClient creates a client for host (default http://localhost:11434)
func NewOllamaClient(host, model string) *OllamaClient {
	return newOllamaClient(newPlatformClient(), host, model)
}

func newOllamaClient(client *resty.Client, host, model string) *OllamaClient {
	host = strings.TrimRight(host, "/")
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaClient{
		client:  client,
		baseURL: host,
		model:   model,
	}
}

// Name identifies the resolver
func (c *OllamaClient) Name() string {
	return "ollama"
}

// GenerateJSON sends one non-streaming chat turn with format set to schema
func (c *OllamaClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	payload := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: ollamaSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	if schema != nil {
		payload.Format = schema
	} else {
		payload.Format = "json"
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.baseURL + "/api/chat")
	if err != nil {
		return nil, requestError("ollama", "generate", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("ollama", "generate", resp.StatusCode())
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, malformedError("ollama", "generate", err)
	}
	if parsed.Error != "" {
		return nil, &PlatformError{
			Platform:  "ollama",
			Operation: "generate",
			Message:   parsed.Error,
			Err:       ErrUpstreamUnavailable,
		}
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return nil, malformedError("ollama", "generate", nil)
	}
	return []byte(content), nil
}

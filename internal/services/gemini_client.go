package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultGeminiModel is used when GEMINI_MODEL is unset
	DefaultGeminiModel = "gemini-3-flash-preview"

	geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiClient calls generateContent with a response schema
type GeminiClient struct {
	client *resty.Client
	apiURL string
	apiKey string
	model  string
}

// NewGeminiClient creates a client; an empty key is reported as missing credentials
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	return newGeminiClient(newPlatformClient(), geminiAPIURL, apiKey, model)
}

func newGeminiClient(client *resty.Client, apiURL, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, credentialsError("gemini", "init", "missing Google API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		client: client,
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Name identifies the resolver
func (c *GeminiClient) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// GenerateJSON returns the text of the first candidate, which the API
// constrains to schema
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema.withUpperTypes(),
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(fmt.Sprintf("%s/models/%s:generateContent", c.apiURL, c.model))
	if err != nil {
		return nil, requestError("gemini", "generate", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("gemini", "generate", resp.StatusCode())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, malformedError("gemini", "generate", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, malformedError("gemini", "generate", nil)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, malformedError("gemini", "generate", nil)
	}
	return []byte(text), nil
}

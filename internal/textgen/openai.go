// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/openai"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// OpenAIBackend calls the Chat Completions API on OpenAI or Azure OpenAI.
type OpenAIBackend struct {
	client   *openai.Client
	settings instructions.TextSettings
}

var _ Backend = (*OpenAIBackend)(nil)

func NewOpenAIBackend(ep instructions.Endpoint, settings instructions.TextSettings, apiKey string, httpCfg types.HTTPConfig) (*OpenAIBackend, error) {
	client, err := openai.NewClient(ep, apiKey, httpCfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIBackend{client: client, settings: settings}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       b.settings.Model,
		Temperature: b.settings.Temperature,
		TopP:        b.settings.TopP,
		MaxTokens:   b.settings.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var resp chatResponse
	if err := b.client.Post(ctx, openai.ChatCompletions, b.settings.Model, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return text, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/profile-engine/internal/gemini"
	"github.com/pdiddy/profile-engine/internal/instructions"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend calls Models.GenerateContent on the Gemini API.
type GeminiBackend struct {
	client   *genai.Client
	settings instructions.TextSettings
}

var _ Backend = (*GeminiBackend)(nil)

func NewGeminiBackend(ctx context.Context, ep instructions.Endpoint, settings instructions.TextSettings, apiKey string) (*GeminiBackend, error) {
	client, err := gemini.NewClient(ctx, ep, apiKey)
	if err != nil {
		return nil, err
	}
	if settings.Model == "" {
		settings.Model = defaultGeminiModel
	}
	return &GeminiBackend{client: client, settings: settings}, nil
}

func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if t := b.settings.Temperature; t != nil {
		cfg.Temperature = genai.Ptr(float32(*t))
	}
	if p := b.settings.TopP; p != nil {
		cfg.TopP = genai.Ptr(float32(*p))
	}
	if b.settings.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(b.settings.MaxTokens)
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.settings.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", gemini.Classify("generate", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned empty content")
	}
	return text, nil
}

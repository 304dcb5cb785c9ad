// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"fmt"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// Request is one text-generation call.
type Request struct {
	// System is sent as the system message. May be empty.
	System string
	// Prompt is the assembled user prompt.
	Prompt string
}

// Backend abstracts the text-generation API so tests can supply a mock.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// NewBackend returns the backend for the provider named in the
// instructions' API section.
func NewBackend(ctx context.Context, text *instructions.Text, apiKey string, httpCfg types.HTTPConfig) (Backend, error) {
	switch p := text.API.ProviderName(); p {
	case instructions.ProviderOpenAI, instructions.ProviderAzure:
		return NewOpenAIBackend(text.API, text.Settings, apiKey, httpCfg)
	case instructions.ProviderGemini:
		return NewGeminiBackend(ctx, text.API, text.Settings, apiKey)
	default:
		return nil, fmt.Errorf("unsupported text provider %q", p)
	}
}

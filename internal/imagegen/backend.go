// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagegen

import (
	"context"
	"fmt"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// Image is a generated image: either a URL to download or inline bytes.
type Image struct {
	URL  string
	Data []byte
}

// Backend abstracts the image-generation API so tests can supply a mock.
type Backend interface {
	Generate(ctx context.Context, prompt string) (Image, error)
}

// NewBackend returns the backend for the provider named in the
// instructions' API section.
func NewBackend(ctx context.Context, img *instructions.Image, apiKey string, httpCfg types.HTTPConfig) (Backend, error) {
	switch p := img.API.ProviderName(); p {
	case instructions.ProviderOpenAI, instructions.ProviderAzure:
		return NewOpenAIBackend(img.API, img.Settings, apiKey, httpCfg)
	case instructions.ProviderGemini:
		return NewGeminiBackend(ctx, img.API, img.Settings, apiKey)
	default:
		return nil, fmt.Errorf("unsupported image provider %q", p)
	}
}

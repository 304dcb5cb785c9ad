// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagegen

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/pdiddy/profile-engine/internal/gemini"
	"github.com/pdiddy/profile-engine/internal/instructions"
)

const defaultImagenModel = "imagen-4.0-generate-001"

// GeminiBackend calls Models.GenerateImages (Imagen) on the Gemini API.
type GeminiBackend struct {
	client   *genai.Client
	settings instructions.ImageSettings
}

var _ Backend = (*GeminiBackend)(nil)

func NewGeminiBackend(ctx context.Context, ep instructions.Endpoint, settings instructions.ImageSettings, apiKey string) (*GeminiBackend, error) {
	client, err := gemini.NewClient(ctx, ep, apiKey)
	if err != nil {
		return nil, err
	}
	if settings.Model == "" {
		settings.Model = defaultImagenModel
	}
	return &GeminiBackend{client: client, settings: settings}, nil
}

func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (Image, error) {
	n := b.settings.N
	if n <= 0 {
		n = 1
	}
	resp, err := b.client.Models.GenerateImages(ctx, b.settings.Model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(n),
	})
	if err != nil {
		return Image{}, gemini.Classify("generate images", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return Image{}, errors.New("gemini returned no images")
	}
	data := resp.GeneratedImages[0].Image.ImageBytes
	if len(data) == 0 {
		return Image{}, errors.New("gemini returned an empty image")
	}
	return Image{Data: data}, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/openai"
	"github.com/pdiddy/profile-engine/pkg/types"
)

const formatB64 = "b64_json"

// OpenAIBackend calls the Images API on OpenAI or Azure OpenAI.
type OpenAIBackend struct {
	client   *openai.Client
	settings instructions.ImageSettings
}

var _ Backend = (*OpenAIBackend)(nil)

func NewOpenAIBackend(ep instructions.Endpoint, settings instructions.ImageSettings, apiKey string, httpCfg types.HTTPConfig) (*OpenAIBackend, error) {
	client, err := openai.NewClient(ep, apiKey, httpCfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIBackend{client: client, settings: settings}, nil
}

type imageRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	Quality        string `json:"quality,omitempty"`
	Style          string `json:"style,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (Image, error) {
	body := imageRequest{
		Model:          b.settings.Model,
		Prompt:         prompt,
		N:              b.settings.N,
		Size:           b.settings.Size,
		ResponseFormat: b.settings.ResponseFormat,
		Quality:        b.settings.Quality,
		Style:          b.settings.Style,
	}

	var resp imageResponse
	if err := b.client.Post(ctx, openai.ImageGenerations, b.settings.Model, body, &resp); err != nil {
		return Image{}, err
	}
	if len(resp.Data) == 0 {
		return Image{}, errors.New("image generation returned no data")
	}

	first := resp.Data[0]
	switch {
	case first.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return Image{}, fmt.Errorf("decoding b64_json: %w", err)
		}
		return Image{Data: data}, nil
	case first.URL != "":
		return Image{URL: first.URL}, nil
	default:
		return Image{}, fmt.Errorf("image generation returned neither url nor %s", formatB64)
	}
}

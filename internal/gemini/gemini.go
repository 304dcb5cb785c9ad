// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini builds Google GenAI clients for the Gemini API and
// classifies their errors for retry.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/retry"
)

// ErrNoAPIKey is returned when a client is created without an API key.
var ErrNoAPIKey = errors.New("gemini: API key is required")

// NewClient creates a Gemini API client. ep.BaseURL, when set, overrides the
// API host.
func NewClient(ctx context.Context, ep instructions.Endpoint, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if ep.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: ep.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return client, nil
}

// Classify wraps err with op and marks client errors other than 408 and 429
// as retry.Permanent.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("gemini %s: %w", op, err)

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code >= 400 && code < 500 && code != http.StatusRequestTimeout && code != http.StatusTooManyRequests {
		return retry.Permanent(wrapped)
	}
	return wrapped
}

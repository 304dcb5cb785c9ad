// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/retry"
	"github.com/pdiddy/profile-engine/pkg/types"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(instructions.Endpoint{}, "", types.HTTPConfig{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	_, err := NewClient(instructions.Endpoint{Provider: "gemini"}, "k", types.HTTPConfig{})
	assert.ErrorContains(t, err, "unsupported provider")

	_, err = NewClient(instructions.Endpoint{Provider: instructions.ProviderAzure}, "k", types.HTTPConfig{})
	assert.ErrorContains(t, err, "azure_endpoint")
}

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		ep   instructions.Endpoint
		want string
	}{
		{"openai default", instructions.Endpoint{}, "https://api.openai.com/v1/chat/completions"},
		{"openai custom", instructions.Endpoint{BaseURL: "http://localhost:8080/"}, "http://localhost:8080/v1/chat/completions"},
		{"azure", instructions.Endpoint{AzureEndpoint: "https://res.openai.azure.com/"}, "https://res.openai.azure.com/openai/deployments/gpt-4o/chat/completions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.ep, "key", types.HTTPConfig{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.URL(ChatCompletions, "gpt-4o"))
		})
	}
}

func TestPostOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dall-e-3", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(instructions.Endpoint{BaseURL: srv.URL}, "sk-test", types.HTTPConfig{})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	err = c.Post(context.Background(), ImageGenerations, "dall-e-3", map[string]any{"model": "dall-e-3"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestPostAzure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/my-gpt/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ep := instructions.Endpoint{Provider: instructions.ProviderAzure, AzureEndpoint: srv.URL, APIVersion: "2024-06-01"}
	c, err := NewClient(ep, "az-key", types.HTTPConfig{})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, c.Post(context.Background(), ChatCompletions, "my-gpt", map[string]any{}, &out))
}

func TestPostAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Your request was rejected","code":"content_policy_violation"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(instructions.Endpoint{BaseURL: srv.URL}, "k", types.HTTPConfig{})
	require.NoError(t, err)

	var out map[string]any
	err = c.Post(context.Background(), ChatCompletions, "m", map[string]any{}, &out)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Your request was rejected", apiErr.Message)
}

func TestPostMarksClientErrorsPermanent(t *testing.T) {
	tests := []struct {
		status        int
		wantPermanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusRequestTimeout, false},
		{http.StatusInternalServerError, false},
		{http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			c, err := NewClient(instructions.Endpoint{BaseURL: srv.URL}, "k", types.HTTPConfig{})
			require.NoError(t, err)

			var out map[string]any
			err = c.Post(context.Background(), ChatCompletions, "m", map[string]any{}, &out)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantPermanent, retry.IsPermanent(err))
		})
	}
}

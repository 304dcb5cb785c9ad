// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openai is a minimal client for the OpenAI and Azure OpenAI REST
// APIs. It builds provider-specific URLs and auth headers; the request and
// response bodies belong to the callers in textgen and imagegen.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/profile-engine/internal/httputil"
	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/retry"
	"github.com/pdiddy/profile-engine/pkg/types"
)

const (
	defaultBaseURL    = "https://api.openai.com"
	defaultAPIVersion = "2024-02-01"
)

// Operation paths relative to the API root.
const (
	ChatCompletions  = "chat/completions"
	ImageGenerations = "images/generations"
)

// ErrNoAPIKey is returned when a client is created without an API key.
var ErrNoAPIKey = errors.New("openai: API key is required")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether repeating the request may succeed: timeouts and
// server errors. 429 is excluded because the HTTP client has already backed
// off and retried it.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout || e.StatusCode >= http.StatusInternalServerError
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Client calls one provider endpoint.
type Client struct {
	http       *resty.Client
	azure      bool
	baseURL    string
	apiVersion string
}

// NewClient creates a client for ep. Azure endpoints authenticate with the
// api-key header and address models as deployments; OpenAI uses a bearer
// token and the /v1 root.
func NewClient(ep instructions.Endpoint, apiKey string, cfg types.HTTPConfig) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{http: httputil.NewClient(cfg)}
	switch ep.ProviderName() {
	case instructions.ProviderAzure:
		if ep.AzureEndpoint == "" {
			return nil, fmt.Errorf("openai: azure provider requires azure_endpoint")
		}
		c.azure = true
		c.baseURL = strings.TrimRight(ep.AzureEndpoint, "/")
		c.apiVersion = ep.APIVersion
		if c.apiVersion == "" {
			c.apiVersion = defaultAPIVersion
		}
		c.http.SetHeader("api-key", apiKey)
	case instructions.ProviderOpenAI:
		c.baseURL = strings.TrimRight(ep.BaseURL, "/")
		if c.baseURL == "" {
			c.baseURL = defaultBaseURL
		}
		c.http.SetAuthToken(apiKey)
	default:
		return nil, fmt.Errorf("openai: unsupported provider %q", ep.ProviderName())
	}
	return c, nil
}

// URL returns the endpoint for operation against model.
func (c *Client) URL(operation, model string) string {
	if c.azure {
		return fmt.Sprintf("%s/openai/deployments/%s/%s", c.baseURL, model, operation)
	}
	return fmt.Sprintf("%s/v1/%s", c.baseURL, operation)
}

// Post sends payload as JSON to operation and decodes a 2xx response into
// result. Non-2xx responses are returned as *APIError; those that are not
// Retryable are marked retry.Permanent.
func (c *Client) Post(ctx context.Context, operation, model string, payload, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(result).
		SetError(&errorEnvelope{})
	if c.azure {
		req.SetQueryParam("api-version", c.apiVersion)
	}

	resp, err := req.Post(c.URL(operation, model))
	if err != nil {
		return fmt.Errorf("openai: %s: %w", operation, err)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if env, ok := resp.Error().(*errorEnvelope); ok && env.Error.Message != "" {
			msg = env.Error.Message
		}
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: msg}
		if !apiErr.Retryable() {
			return retry.Permanent(apiErr)
		}
		return apiErr
	}
	return nil
}

// HTTP exposes the underlying resty client, for downloads that should share
// its timeout and retry settings.
func (c *Client) HTTP() *resty.Client {
	return c.http
}

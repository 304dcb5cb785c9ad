// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// RateLimitRetries bounds retries on HTTP 429 responses (default 5).
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// Account maps a person name to the LinkedIn profile it is scraped from.
type Account struct {
	// Name is the person name used on the command line and in output filenames.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Profile is a vanity URL (https://www.linkedin.com/in/<id>/) or a bare
	// public identifier.
	Profile string `json:"profile" yaml:"profile" mapstructure:"profile"`
}

// LinkedInConfig holds settings for the extraction stage.
type LinkedInConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is the LinkedIn login used to authenticate.
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	// Password is the LinkedIn password. Usually left empty and prompted for.
	Password string `json:"-" yaml:"-" mapstructure:"password"`

	// BaseURL is the LinkedIn origin (default https://www.linkedin.com).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// RequestsPerSecond caps the request rate against LinkedIn (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// GenerationConfig holds settings shared by the text and image stages.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Instructions is the path to a TOML instructions file. Empty selects the
	// built-in defaults.
	Instructions string `json:"instructions" yaml:"instructions" mapstructure:"instructions"`

	// APIKey authenticates against the generation provider.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed generation calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Force regenerates outputs even when they are newer than their inputs.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// PipelineConfig groups the stage configurations read from profile-engine.yaml.
type PipelineConfig struct {
	// OutputsDir is the base directory for stage outputs (contains profiles/,
	// responses/, images/ and ledger.db).
	OutputsDir string `json:"outputs_dir" yaml:"outputs_dir" mapstructure:"outputs_dir"`

	Accounts []Account        `json:"accounts" yaml:"accounts" mapstructure:"accounts"`
	LinkedIn LinkedInConfig   `json:"linkedin" yaml:"linkedin" mapstructure:"linkedin"`
	Text     GenerationConfig `json:"text" yaml:"text" mapstructure:"text"`
	Image    GenerationConfig `json:"image" yaml:"image" mapstructure:"image"`
}

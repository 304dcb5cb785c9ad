// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package instructions loads the TOML files that configure the generation
// stages: which provider endpoint to call, the model settings, and the
// prompt text the stage input is merged into.
package instructions

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/template"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Provider identifies a generation API.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
	ProviderGemini Provider = "gemini"
)

// ErrMissingSection is returned when an instructions file lacks a required section.
var ErrMissingSection = errors.New("instructions file is missing required sections")

var (
	//go:embed defaults/text.toml
	defaultText []byte

	//go:embed defaults/image.toml
	defaultImage []byte
)

// TextSections and ImageSections list the sections each stage requires.
var (
	TextSections  = []string{"open_ai_api", "open_ai_settings", "prompts"}
	ImageSections = []string{"img_gen_api", "img_gen_settings", "prompts"}
)

// Endpoint selects and addresses the provider API.
type Endpoint struct {
	Provider      Provider `toml:"provider"`
	BaseURL       string   `toml:"base_url"`
	AzureEndpoint string   `toml:"azure_endpoint"`
	APIVersion    string   `toml:"api_version"`
}

// ProviderName returns the configured provider. An unset provider means
// Azure when an Azure endpoint is given and OpenAI otherwise.
func (e Endpoint) ProviderName() Provider {
	if e.Provider != "" {
		return e.Provider
	}
	if e.AzureEndpoint != "" {
		return ProviderAzure
	}
	return ProviderOpenAI
}

// Prompts holds the prompt text. Instructions frame the stage input;
// System is sent as the system message where the provider supports one.
type Prompts struct {
	System       string `toml:"system"`
	Instructions string `toml:"instructions"`
}

type TextSettings struct {
	Model       string   `toml:"model"`
	Temperature *float64 `toml:"temperature"`
	TopP        *float64 `toml:"top_p"`
	MaxTokens   int      `toml:"max_tokens"`
}

type ImageSettings struct {
	Model          string `toml:"model"`
	N              int    `toml:"n"`
	Size           string `toml:"size"`
	ResponseFormat string `toml:"response_format"`
	Quality        string `toml:"quality"`
	Style          string `toml:"style"`
}

// Text configures the text stage.
type Text struct {
	API      Endpoint     `toml:"open_ai_api"`
	Settings TextSettings `toml:"open_ai_settings"`
	Prompts  Prompts      `toml:"prompts"`
}

// Image configures the image stage.
type Image struct {
	API      Endpoint      `toml:"img_gen_api"`
	Settings ImageSettings `toml:"img_gen_settings"`
	Prompts  Prompts       `toml:"prompts"`
}

// LoadText reads text-stage instructions from path, or the built-in
// defaults when path is empty.
func LoadText(path string, logger *zap.Logger) (*Text, error) {
	var t Text
	if err := load(path, defaultText, TextSections, &t, logger); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadImage reads image-stage instructions from path, or the built-in
// defaults when path is empty.
func LoadImage(path string, logger *zap.Logger) (*Image, error) {
	var img Image
	if err := load(path, defaultImage, ImageSections, &img, logger); err != nil {
		return nil, err
	}
	if img.Settings.N <= 0 {
		img.Settings.N = 1
	}
	return &img, nil
}

// DefaultText and DefaultImage return the embedded default files.
func DefaultText() []byte  { return bytes.Clone(defaultText) }
func DefaultImage() []byte { return bytes.Clone(defaultImage) }

func load(path string, defaults []byte, required []string, dst any, logger *zap.Logger) error {
	data := defaults
	if path == "" {
		logger.Info("Using default instructions")
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading instructions %s: %w", path, err)
		}
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing instructions: %w", err)
	}

	var missing []string
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: must have %v, missing %v", ErrMissingSection, required, missing)
	}

	if err := toml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding instructions: %w", err)
	}

	if prompts, ok := raw["prompts"].(map[string]any); !ok || prompts["instructions"] == nil {
		logger.Warn("instructions in prompts is not set, replacing with empty string")
	}
	return nil
}

var promptTmpl = template.Must(template.New("prompt").Parse("{{.Instructions}}\n>>>>>{{.Content}}<<<<<"))

// Assemble merges content into the prompt: the instructions, a newline, and
// the content between >>>>> and <<<<< markers.
func Assemble(instructions, content string) string {
	var buf bytes.Buffer
	_ = promptTmpl.Execute(&buf, struct{ Instructions, Content string }{instructions, content})
	return buf.String()
}

// KeyNames returns the environment variable and .secrets key that hold the
// provider's API key. Azure shares the OpenAI names.
func (p Provider) KeyNames() (envVar, secretKey string) {
	if p == ProviderGemini {
		return "GEMINI_API_KEY", "gemini-api-key"
	}
	return "OPENAI_API_KEY", "openai-api-key"
}

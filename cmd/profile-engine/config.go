// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/internal/secrets"
	"github.com/pdiddy/profile-engine/pkg/types"
)

const envPrefix = "PROFILE_ENGINE"

// envKeys are the config keys that can be overridden from the environment,
// e.g. text.api_key from PROFILE_ENGINE_TEXT_API_KEY.
var envKeys = []string{
	"outputs_dir",
	"linkedin.email", "linkedin.password", "linkedin.base_url", "linkedin.requests_per_second",
	"linkedin.timeout", "linkedin.user_agent", "linkedin.rate_limit_retries",
}

func init() {
	for _, stage := range []string{"text", "image"} {
		for _, key := range []string{"instructions", "api_key", "max_retries", "force", "timeout", "user_agent", "rate_limit_retries"} {
			envKeys = append(envKeys, stage+"."+key)
		}
	}
}

// configureEnv maps PROFILE_ENGINE_* variables onto config keys, with
// nested keys joined by underscores.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// loadConfig decodes profile-engine.yaml (plus PROFILE_ENGINE_* overrides).
func loadConfig() (types.PipelineConfig, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// stringFlag returns the flag value when it was set on the command line and
// fallback otherwise.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// outputsLayout resolves the outputs directory from --outputs-dir or config.
func outputsLayout(cmd *cobra.Command, cfg types.PipelineConfig) layout.Layout {
	return layout.New(stringFlag(cmd, "outputs-dir", cfg.OutputsDir))
}

// openRecorder opens the run ledger. When the database cannot be opened the
// stage still runs, unrecorded.
func openRecorder(l layout.Layout) (ledger.Recorder, func()) {
	led, err := ledger.Open(l.LedgerPath())
	if err != nil {
		logger.Warn("run ledger disabled", zap.String("path", l.LedgerPath()), zap.Error(err))
		return ledger.Nop{}, func() {}
	}
	return led, func() {
		if err := led.Close(); err != nil {
			logger.Warn("closing run ledger", zap.Error(err))
		}
	}
}

// providerKey resolves the API key for provider: configured value, then the
// provider's environment variable, then its .secrets/ file.
func providerKey(provider instructions.Provider, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	envVar, secretKey := provider.KeyNames()
	if key := secrets.Lookup(loadedSecrets, secretKey, envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not found (set it in the environment, .env, or .secrets/%s)", envVar, secretKey)
}

func addStageFlags(cmd *cobra.Command) {
	cmd.Flags().String("person", "", "person name from accounts, or ALL")
	cmd.Flags().String("outputs-dir", layout.DefaultRoot, "base directory for stage outputs")
}

func addGenerationFlags(cmd *cobra.Command) {
	addStageFlags(cmd)
	cmd.Flags().String("instructions", "", "TOML instructions file (default: built-in)")
	cmd.Flags().Bool("force", false, "regenerate outputs that are already up to date")
}

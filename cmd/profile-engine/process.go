// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/roster"
	"github.com/pdiddy/profile-engine/internal/textgen"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate text responses from extracted profiles",
	Long: `Process reads outputs/profiles/<name>.yaml, merges it into the prompt from
the instructions file, and writes the model's reply to
outputs/responses/<name>.txt. Responses newer than their profile are skipped
unless --force is given.

The instructions file is TOML with [open_ai_api], [open_ai_settings] and
[prompts] sections. "profile-engine instructions text" prints the built-in
defaults as a starting point.`,
	RunE: runProcess,
}

func init() {
	addGenerationFlags(processCmd)
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	person, _ := cmd.Flags().GetString("person")
	accounts, err := roster.Resolve(cfg.Accounts, person)
	if err != nil {
		return err
	}

	text, err := instructions.LoadText(stringFlag(cmd, "instructions", cfg.Text.Instructions), logger)
	if err != nil {
		return err
	}
	apiKey, err := providerKey(text.API.ProviderName(), cfg.Text.APIKey)
	if err != nil {
		return err
	}
	backend, err := textgen.NewBackend(cmd.Context(), text, apiKey, cfg.Text.HTTPConfig)
	if err != nil {
		return err
	}

	l := outputsLayout(cmd, cfg)
	rec, closeRec := openRecorder(l)
	defer closeRec()

	force, _ := cmd.Flags().GetBool("force")
	stage := &textgen.Stage{
		Backend:      backend,
		Instructions: text,
		Layout:       l,
		Recorder:     rec,
		MaxRetries:   cfg.Text.MaxRetries,
		Force:        force || cfg.Text.Force,
		Out:          os.Stdout,
		Logger:       logger,
	}

	summary := stage.ProcessAll(cmd.Context(), accounts)
	if summary.HasFailures() {
		return fmt.Errorf("%d person(s) failed text generation", summary.Failed)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/httputil"
	"github.com/pdiddy/profile-engine/internal/imagegen"
	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/roster"
)

var portraitCmd = &cobra.Command{
	Use:   "portrait",
	Short: "Generate portrait images from text responses",
	Long: `Portrait reads outputs/responses/<name>.txt, merges it into the image
prompt from the instructions file, and saves the generated image to
outputs/images/<name>.png. Images newer than their response are skipped
unless --force is given.

The instructions file is TOML with [img_gen_api], [img_gen_settings] and
[prompts] sections. "profile-engine instructions image" prints the built-in
defaults as a starting point.`,
	RunE: runPortrait,
}

func init() {
	addGenerationFlags(portraitCmd)
	rootCmd.AddCommand(portraitCmd)
}

func runPortrait(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	person, _ := cmd.Flags().GetString("person")
	accounts, err := roster.Resolve(cfg.Accounts, person)
	if err != nil {
		return err
	}

	img, err := instructions.LoadImage(stringFlag(cmd, "instructions", cfg.Image.Instructions), logger)
	if err != nil {
		return err
	}
	apiKey, err := providerKey(img.API.ProviderName(), cfg.Image.APIKey)
	if err != nil {
		return err
	}
	backend, err := imagegen.NewBackend(cmd.Context(), img, apiKey, cfg.Image.HTTPConfig)
	if err != nil {
		return err
	}

	l := outputsLayout(cmd, cfg)
	rec, closeRec := openRecorder(l)
	defer closeRec()

	force, _ := cmd.Flags().GetBool("force")
	stage := &imagegen.Stage{
		Backend:      backend,
		Instructions: img,
		HTTP:         httputil.NewClient(cfg.Image.HTTPConfig),
		Layout:       l,
		Recorder:     rec,
		MaxRetries:   cfg.Image.MaxRetries,
		Force:        force || cfg.Image.Force,
		Out:          os.Stdout,
		Logger:       logger,
	}

	summary := stage.GenerateAll(cmd.Context(), accounts)
	if summary.HasFailures() {
		return fmt.Errorf("%d person(s) failed image generation", summary.Failed)
	}
	return nil
}

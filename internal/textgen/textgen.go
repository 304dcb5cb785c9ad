// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textgen turns extracted profiles into written responses. Each
// person's profile file is rendered into the prompt template from the
// instructions file, sent to the configured provider, and the reply is
// written to the person's response file.
package textgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/internal/linkedin"
	"github.com/pdiddy/profile-engine/internal/retry"
	"github.com/pdiddy/profile-engine/internal/roster"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// Stage runs text generation for one or more people.
type Stage struct {
	Backend      Backend
	Instructions *instructions.Text
	Layout       layout.Layout
	Recorder     ledger.Recorder
	MaxRetries   int
	// Force regenerates responses that are newer than their profiles.
	Force  bool
	Out    io.Writer
	Logger *zap.Logger
}

// ProcessPerson generates the response for one person and returns the path
// written.
func (s *Stage) ProcessPerson(ctx context.Context, name string) (string, error) {
	slug := roster.Slug(name)
	profile, err := linkedin.LoadProfile(s.Layout.ProfilePath(slug))
	if err != nil {
		return "", err
	}

	content, err := yaml.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("rendering profile: %w", err)
	}
	req := Request{
		System: s.Instructions.Prompts.System,
		Prompt: instructions.Assemble(s.Instructions.Prompts.Instructions, string(content)),
	}

	s.Logger.Info("Generating response",
		zap.String("person", name),
		zap.String("provider", string(s.Instructions.API.ProviderName())),
		zap.String("model", s.Instructions.Settings.Model))
	s.Logger.Debug("Prompt", zap.String("person", name), zap.Int("bytes", len(req.Prompt)))

	text, err := retry.Do(ctx, s.MaxRetries, func(ctx context.Context) (string, error) {
		return s.Backend.Generate(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generating response: empty reply")
	}

	if err := os.MkdirAll(s.Layout.ResponsesDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating responses directory: %w", err)
	}
	path := s.Layout.ResponsePath(slug)
	if err := layout.WriteFileAtomic(path, []byte(text+"\n")); err != nil {
		return "", err
	}
	return path, nil
}

// ProcessAll generates responses for every account. Responses newer than
// their profile are skipped unless Force is set; failures are reported and
// the loop continues.
func (s *Stage) ProcessAll(ctx context.Context, accounts []types.Account) types.BatchSummary {
	var summary types.BatchSummary
	for _, account := range accounts {
		slug := roster.Slug(account.Name)
		run := ledger.Start(ctx, s.Recorder, account.Name, types.StageProcess, s.Logger)

		if !s.Force {
			changed, err := layout.HasChanged(s.Layout.ProfilePath(slug), s.Layout.ResponsePath(slug))
			if err != nil {
				fmt.Fprintf(s.Out, "failed  %s: %v\n", account.Name, err)
				ledger.Complete(ctx, s.Recorder, run, types.RunFailed, "", err.Error(), s.Logger)
				summary.Failed++
				continue
			}
			if !changed {
				fmt.Fprintf(s.Out, "skipped %s\n", account.Name)
				ledger.Complete(ctx, s.Recorder, run, types.RunSkipped, s.Layout.ResponsePath(slug), "up to date", s.Logger)
				summary.Skipped++
				continue
			}
		}

		fmt.Fprintf(s.Out, "processing %s\n", account.Name)
		path, err := s.ProcessPerson(ctx, account.Name)
		if err != nil {
			fmt.Fprintf(s.Out, "failed  %s: %v\n", account.Name, err)
			ledger.Complete(ctx, s.Recorder, run, types.RunFailed, "", err.Error(), s.Logger)
			summary.Failed++
			continue
		}

		fmt.Fprintf(s.Out, "generated %s -> %s\n", account.Name, path)
		ledger.Complete(ctx, s.Recorder, run, types.RunSucceeded, path, "", s.Logger)
		summary.Succeeded++
	}

	fmt.Fprintf(s.Out, "\nBatch summary: %d generated, %d skipped, %d failed (total: %d)\n",
		summary.Succeeded, summary.Skipped, summary.Failed, summary.Total())
	return summary
}

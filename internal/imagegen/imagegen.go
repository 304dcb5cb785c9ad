// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagegen renders portraits from the text responses. Each person's
// response is merged into the image prompt, sent to the image provider, and
// the result is downloaded (or decoded) into the person's PNG.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/profile-engine/internal/httputil"
	"github.com/pdiddy/profile-engine/internal/instructions"
	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/internal/retry"
	"github.com/pdiddy/profile-engine/internal/roster"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// Stage runs image generation for one or more people.
type Stage struct {
	Backend      Backend
	Instructions *instructions.Image
	// HTTP downloads returned image URLs.
	HTTP       *resty.Client
	Layout     layout.Layout
	Recorder   ledger.Recorder
	MaxRetries int
	Force      bool
	Out        io.Writer
	Logger     *zap.Logger
}

// GeneratePerson renders the portrait for one person from their own
// response file and returns the path written.
func (s *Stage) GeneratePerson(ctx context.Context, name string) (string, error) {
	slug := roster.Slug(name)
	respPath := s.Layout.ResponsePath(slug)
	data, err := os.ReadFile(respPath)
	if err != nil {
		return "", fmt.Errorf("reading response %s: %w", respPath, err)
	}
	description := strings.TrimSpace(string(data))
	if description == "" {
		return "", fmt.Errorf("response %s is empty", respPath)
	}

	prompt := instructions.Assemble(s.Instructions.Prompts.Instructions, description)
	s.Logger.Info("Generating image",
		zap.String("person", name),
		zap.String("provider", string(s.Instructions.API.ProviderName())),
		zap.String("model", s.Instructions.Settings.Model))

	img, err := retry.Do(ctx, s.MaxRetries, func(ctx context.Context) (Image, error) {
		return s.Backend.Generate(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("generating image: %w", err)
	}

	if err := os.MkdirAll(s.Layout.ImagesDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating images directory: %w", err)
	}
	path := s.Layout.ImagePath(slug)
	if len(img.Data) > 0 {
		if err := layout.WriteFileAtomic(path, img.Data); err != nil {
			return "", err
		}
		return path, nil
	}

	client := s.HTTP
	if client == nil {
		client = httputil.NewClient(types.HTTPConfig{})
	}
	s.Logger.Debug("Downloading image", zap.String("person", name), zap.String("url", img.URL))
	if err := httputil.Download(ctx, client, img.URL, path); err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	return path, nil
}

// GenerateAll renders portraits for every account. Images newer than their
// response are skipped unless Force is set; failures are reported and the
// loop continues.
func (s *Stage) GenerateAll(ctx context.Context, accounts []types.Account) types.BatchSummary {
	var summary types.BatchSummary
	for _, account := range accounts {
		slug := roster.Slug(account.Name)
		run := ledger.Start(ctx, s.Recorder, account.Name, types.StagePortrait, s.Logger)

		if !s.Force {
			changed, err := layout.HasChanged(s.Layout.ResponsePath(slug), s.Layout.ImagePath(slug))
			if err != nil {
				fmt.Fprintf(s.Out, "failed  %s: %v\n", account.Name, err)
				ledger.Complete(ctx, s.Recorder, run, types.RunFailed, "", err.Error(), s.Logger)
				summary.Failed++
				continue
			}
			if !changed {
				fmt.Fprintf(s.Out, "skipped %s\n", account.Name)
				ledger.Complete(ctx, s.Recorder, run, types.RunSkipped, s.Layout.ImagePath(slug), "up to date", s.Logger)
				summary.Skipped++
				continue
			}
		}

		fmt.Fprintf(s.Out, "painting %s\n", account.Name)
		path, err := s.GeneratePerson(ctx, account.Name)
		if err != nil {
			fmt.Fprintf(s.Out, "failed  %s: %v\n", account.Name, err)
			ledger.Complete(ctx, s.Recorder, run, types.RunFailed, "", err.Error(), s.Logger)
			summary.Failed++
			continue
		}

		fmt.Fprintf(s.Out, "painted %s -> %s\n", account.Name, path)
		ledger.Complete(ctx, s.Recorder, run, types.RunSucceeded, path, "", s.Logger)
		summary.Succeeded++
	}

	fmt.Fprintf(s.Out, "\nBatch summary: %d painted, %d skipped, %d failed (total: %d)\n",
		summary.Succeeded, summary.Skipped, summary.Failed, summary.Total())
	return summary
}

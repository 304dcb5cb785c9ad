// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkedin

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/internal/roster"
	"github.com/pdiddy/profile-engine/pkg/types"
)

// Scraper fetches raw profiles. *Client is the production implementation.
type Scraper interface {
	GetProfile(ctx context.Context, publicID string) (RawProfile, error)
}

// ExtractAccount scrapes the account's profile, keeps the allow-listed
// fields and writes them to the account's profile file. It returns the path
// written.
func ExtractAccount(ctx context.Context, s Scraper, account types.Account, l layout.Layout, logger *zap.Logger) (string, error) {
	publicID := NormalizePublicID(account.Profile)
	if publicID == "" {
		return "", fmt.Errorf("account %q has no usable LinkedIn profile reference %q", account.Name, account.Profile)
	}

	logger.Info("Scraping LinkedIn", zap.String("person", account.Name), zap.String("profile", publicID))
	raw, err := s.GetProfile(ctx, publicID)
	if err != nil {
		return "", err
	}
	logger.Info("Profile keys", zap.Strings("keys", raw.Keys()))

	profile, err := Filter(raw)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(l.ProfilesDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating profiles directory: %w", err)
	}
	path := l.ProfilePath(roster.Slug(account.Name))
	if err := WriteProfile(path, profile); err != nil {
		return "", err
	}
	return path, nil
}

// ExtractAll runs ExtractAccount for every account, printing per-person
// status to w. It continues after individual failures.
func ExtractAll(ctx context.Context, s Scraper, accounts []types.Account, l layout.Layout, rec ledger.Recorder, w io.Writer, logger *zap.Logger) types.BatchSummary {
	var summary types.BatchSummary
	for _, account := range accounts {
		run := ledger.Start(ctx, rec, account.Name, types.StageExtract, logger)

		fmt.Fprintf(w, "extracting %s\n", account.Name)
		path, err := ExtractAccount(ctx, s, account, l, logger)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", account.Name, err)
			ledger.Complete(ctx, rec, run, types.RunFailed, "", err.Error(), logger)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s -> %s\n", account.Name, path)
		ledger.Complete(ctx, rec, run, types.RunSucceeded, path, "", logger)
		summary.Succeeded++
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d failed (total: %d)\n",
		summary.Succeeded, summary.Failed, summary.Total())
	return summary
}

// WriteProfile marshals the profile to YAML at path.
func WriteProfile(path string, profile *types.Profile) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	return layout.WriteFileAtomic(path, data)
}

// LoadProfile reads a profile file written by WriteProfile.
func LoadProfile(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var p types.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

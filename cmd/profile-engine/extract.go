// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/linkedin"
	"github.com/pdiddy/profile-engine/internal/roster"
	"github.com/pdiddy/profile-engine/internal/secrets"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scrape LinkedIn profiles into profile files",
	Long: `Extract logs in to LinkedIn, reads the profile of each selected account,
keeps the retained fields (first name, headline, summary, experience,
industry, education, skills, languages, honors, projects, publications,
certifications, volunteer) and writes them to outputs/profiles/<name>.yaml.

The LinkedIn password is read from config, LINKEDIN_PASSWORD or
.secrets/linkedin-password, and prompted for when none is set.`,
	RunE: runExtract,
}

func init() {
	addStageFlags(extractCmd)
	extractCmd.Flags().String("email", "", "LinkedIn login email")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	person, _ := cmd.Flags().GetString("person")
	accounts, err := roster.Resolve(cfg.Accounts, person)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts configured; nothing to extract.")
		return nil
	}

	email := stringFlag(cmd, "email", cfg.LinkedIn.Email)
	if email == "" {
		email = secrets.Lookup(loadedSecrets, "linkedin-email", "LINKEDIN_EMAIL")
	}
	if email == "" {
		return fmt.Errorf("provide a LinkedIn email with --email, linkedin.email, LINKEDIN_EMAIL or .secrets/linkedin-email")
	}

	password := cfg.LinkedIn.Password
	if password == "" {
		password = secrets.Lookup(loadedSecrets, "linkedin-password", "LINKEDIN_PASSWORD")
	}
	if password == "" {
		prompt := &survey.Password{Message: fmt.Sprintf("LinkedIn password for %s:", email)}
		if err := survey.AskOne(prompt, &password); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	l := outputsLayout(cmd, cfg)
	if err := l.EnsureDirs(); err != nil {
		return err
	}
	rec, closeRec := openRecorder(l)
	defer closeRec()

	client, err := linkedin.NewClient(cfg.LinkedIn, logger)
	if err != nil {
		return err
	}
	if err := client.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	summary := linkedin.ExtractAll(cmd.Context(), client, accounts, l, rec, os.Stdout, logger)
	if summary.HasFailures() {
		return fmt.Errorf("%d profile(s) failed extraction", summary.Failed)
	}
	return nil
}

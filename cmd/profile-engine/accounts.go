// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/linkedin"
	"github.com/pdiddy/profile-engine/internal/roster"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the configured accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		accounts, err := roster.Resolve(cfg.Accounts, roster.All)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Person", "File name", "LinkedIn ID"})
		for _, a := range accounts {
			t.AppendRow(table.Row{a.Name, roster.Slug(a.Name), linkedin.NormalizePublicID(a.Profile)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

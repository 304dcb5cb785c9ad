// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/layout"
	"github.com/pdiddy/profile-engine/internal/ledger"
	"github.com/pdiddy/profile-engine/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest run of each stage for each person",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("outputs-dir", layout.DefaultRoot, "base directory for stage outputs")
	statusCmd.Flags().Bool("json", false, "print runs as JSON")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l := outputsLayout(cmd, cfg)

	if _, err := os.Stat(l.LedgerPath()); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	led, err := ledger.Open(l.LedgerPath())
	if err != nil {
		return err
	}
	defer led.Close()

	runs, err := led.Latest(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []types.StageRun{}
		}
		return enc.Encode(runs)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Person", "Stage", "Status", "Finished", "Output", "Detail"})
	for _, r := range runs {
		finished := ""
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Local().Format(time.DateTime)
		}
		t.AppendRow(table.Row{r.Person, r.Stage, r.Status, finished, r.OutputPath, r.Detail})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/profile-engine/internal/instructions"
)

var instructionsCmd = &cobra.Command{
	Use:       "instructions text|image",
	Short:     "Print the built-in instructions file for a stage",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"text", "image"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "text":
			_, err := os.Stdout.Write(instructions.DefaultText())
			return err
		case "image":
			_, err := os.Stdout.Write(instructions.DefaultImage())
			return err
		default:
			return fmt.Errorf("unknown stage %q (want text or image)", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(instructionsCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"typewatch/internal/toolchain"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the on-disk diagnostics cache",
	Long: `Remove the per-package diagnostics cache under the user cache
directory. The next query repopulates it from scratch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, err := toolchain.OpenDiskCache(toolchain.CacheApp)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := dc.DropAll(); err != nil {
			return fmt.Errorf("failed to remove cache: %w", err)
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "cache removed")
		}
		return nil
	},
}

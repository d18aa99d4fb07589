package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.go>",
	Short: "Type-check a single file",
	Long: `Refresh the file's snapshot, re-check its package and report the
diagnostics attributed to the file. Unmodified dependencies are served
from the warm session and never re-checked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}

		res, err := app.checker.CheckFile(args[0])
		if err != nil {
			return err
		}
		return app.output(cmd, res)
	},
}

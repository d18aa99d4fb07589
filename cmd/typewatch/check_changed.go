package main

import (
	"github.com/spf13/cobra"

	"typewatch/internal/vcs"
)

var checkChangedCmd = &cobra.Command{
	Use:   "check-changed",
	Short: "Type-check the files modified in the working tree",
	Long: `Ask git which source files changed relative to HEAD (staged,
unstaged and untracked) and check exactly those. Deleted files and
files outside the project are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		app.bindResolver(vcs.NewClient(app.host.Manifest().Root))

		res, err := app.checker.CheckChanged(cmd.Context())
		if err != nil {
			return err
		}
		return app.output(cmd, res)
	},
}

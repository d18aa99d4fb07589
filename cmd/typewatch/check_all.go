package main

import (
	"github.com/spf13/cobra"
)

var checkAllCmd = &cobra.Command{
	Use:   "check-all",
	Short: "Type-check the entire project",
	Long: `Check every package the project owns. Packages whose files did not
change since the last query are served from cache; on a cold session
this is a full sweep.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}

		res, err := app.checker.CheckAll()
		if err != nil {
			return err
		}
		return app.output(cmd, res)
	},
}

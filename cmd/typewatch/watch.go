package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"typewatch/internal/render"
	"typewatch/internal/watch"
)

func init() {
	watchCmd.Flags().Int("debounce", 0, "debounce window in milliseconds (0 = manifest value)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and re-check files as they change",
	Long: `Subscribe to file system events under the project root and run a
check cycle after each debounced burst of changes. One event is emitted
per cycle; Ctrl-C stops the loop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}

		debounceMs, err := cmd.Flags().GetInt("debounce")
		if err != nil {
			return fmt.Errorf("failed to get debounce flag: %w", err)
		}
		if debounceMs <= 0 {
			debounceMs = app.host.Manifest().Config.Watch.DebounceMs
		}

		sub, err := watch.Subscribe(app.host.Manifest())
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		emit := func(ev watch.Event) {
			switch app.format {
			case render.FormatJSON:
				render.WriteWatchEvent(out, ev)
			case render.FormatMarkdown:
				render.WriteMarkdown(out, ev.Result)
			default:
				if !app.quiet {
					fmt.Fprintf(out, "[%s] check\n", time.UnixMilli(ev.Timestamp).Format("15:04:05"))
				}
				render.WritePretty(out, ev.Result, render.PrettyOpts{
					Color: app.color,
					Root:  app.host.Manifest().Root,
					Quiet: app.quiet,
				})
			}
		}
		report := func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "typewatch: watch cycle failed: %v\n", err)
		}

		if !app.quiet && app.format == render.FormatPretty {
			fmt.Fprintf(out, "watching %s (debounce %dms)\n", app.host.Manifest().Root, debounceMs)
		}

		reactor := watch.NewReactor(sub.Paths(), app.checker,
			time.Duration(debounceMs)*time.Millisecond, emit, report)
		reactor.Run(ctx)
		return nil
	},
}

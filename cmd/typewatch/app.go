package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"typewatch/internal/checker"
	"typewatch/internal/render"
	"typewatch/internal/session"
)

// appContext is everything a check subcommand needs after flag parsing.
type appContext struct {
	host    *session.Host
	checker *checker.Checker
	opts    checker.Options
	format  render.Format
	color   bool
	quiet   bool
}

// newAppContext reads the persistent flags and builds the session
// rooted at the current directory. The checker starts without a
// change-set resolver; bindResolver attaches one.
func newAppContext(cmd *cobra.Command) (*appContext, error) {
	flags := cmd.Root().PersistentFlags()

	formatStr, err := flags.GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := render.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := resolveColor(colorMode)
	if err != nil {
		return nil, err
	}

	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	metrics, err := flags.GetBool("metrics")
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics flag: %w", err)
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	noWarnings, err := flags.GetBool("no-warnings")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	host, err := session.New(".", session.Options{DisableCache: noCache})
	if err != nil {
		return nil, err
	}

	opts := checker.Options{Metrics: metrics, NoWarnings: noWarnings}
	return &appContext{
		host:    host,
		checker: checker.New(host, nil, opts),
		opts:    opts,
		format:  format,
		color:   useColor,
		quiet:   quiet,
	}, nil
}

// bindResolver rebuilds the checker with a change-set resolver. Only
// check-changed needs one; the session and caches are unaffected.
func (a *appContext) bindResolver(r checker.Resolver) {
	a.checker = checker.New(a.host, r, a.opts)
}

func resolveColor(mode string) (bool, error) {
	switch mode {
	case "auto":
		return isTerminal(os.Stdout), nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("unknown color mode %q (expected auto, on or off)", mode)
	}
}

// output renders the result and records the exit status: any hard
// error in the result maps to exit code 1.
func (a *appContext) output(cmd *cobra.Command, res *checker.Result) error {
	out := cmd.OutOrStdout()
	switch a.format {
	case render.FormatJSON:
		if err := render.WriteJSON(out, res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	case render.FormatMarkdown:
		render.WriteMarkdown(out, res)
	default:
		render.WritePretty(out, res, render.PrettyOpts{
			Color: a.color,
			Root:  a.host.Manifest().Root,
			Quiet: a.quiet,
		})
	}

	// Any diagnostic, warning or error, flips the exit status.
	if len(res.Errors) > 0 {
		exitCode = 1
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/internal/presentation/tui"
	"github.com/aretw0/sentinel/pkg/runner"
)

// RunOptions contains the configuration of the chat and term commands.
type RunOptions struct {
	Mode      runner.Mode
	SessionID string
	JSON      bool
	Headless  bool
	Fresh     bool
	NoDelay   bool

	In  io.Reader
	Out io.Writer
}

// RunInteractive drives one widget over stdin/stdout until the user leaves.
func RunInteractive(ctx context.Context, app *App, opts RunOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	quiet := opts.JSON || opts.Headless

	if opts.Fresh && opts.SessionID != "" {
		if err := app.Console.Reset(ctx, opts.SessionID); err != nil {
			return err
		}
	}

	if !quiet {
		tui.PrintBanner(out, sentinel.Version)
	}

	r := runner.NewRunner(app.Console, createRunnerOptions(app, opts, in, out)...)
	app.Logger.Info("session active", "session_id", r.SessionID, "mode", r.Mode)

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("session %s failed: %w", r.SessionID, err)
	}
	if !quiet {
		printSystemMessage(out, "Session '%s' closed.", r.SessionID)
	}
	return nil
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(app *App, opts RunOptions, in io.Reader, out io.Writer) []runner.Option {
	mode := opts.Mode
	if mode == "" {
		mode = runner.ModeChat
	}
	delay := app.Settings.TypingDelay
	if opts.NoDelay || opts.JSON {
		delay = 0
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithMode(mode),
		runner.WithHeadless(opts.Headless),
		runner.WithTypingDelay(delay),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts, runner.WithSessionID(opts.SessionID))
	}

	if opts.JSON {
		return append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(in, out)))
	}

	textOpts := []runner.TextHandlerOption{
		runner.WithTextHandlerSanitizer(runner.NewSanitizer(app.Settings.MaxInputSize)),
	}
	if mode == runner.ModeChat && !opts.Headless && runner.IsInteractive(in) {
		textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer(0)))
	}
	return append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(in, out, textOpts...)))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/session"
	"github.com/spf13/cobra"
)

// exitError reports a jump that ended without a location. The navigator has
// already told the user why, so Execute only sets the exit status.
type exitError struct {
	outcome jump.Outcome
}

func (e *exitError) Error() string {
	return "jump ended with outcome " + string(e.outcome)
}

// jumpFlags are the output flags shared by the jump commands.
type jumpFlags struct {
	json     bool
	noPrompt bool
	progress bool
}

func (f *jumpFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&f.noPrompt, "no-prompt", false, "Print every candidate instead of asking for a selection")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar while scanning files")
}

type jumpFunc func(ctx context.Context, sess *session.Session, actions *jump.Actions) (jump.Result, error)

// runJump builds a session, runs do against a terminal navigator and reports
// the result.
func runJump(cmd *cobra.Command, flags *jumpFlags, do jumpFunc) error {
	var reporter batch.Reporter
	if flags.progress {
		reporter = newProgressReporter(cmd.ErrOrStderr())
	}

	sess, err := loadSession(reporter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	navOut := out
	if flags.json {
		navOut = io.Discard
	}
	nav := newTerminalNavigator(cmd.InOrStdin(), navOut, cmd.ErrOrStderr(), !flags.noPrompt && !flags.json)

	res, err := do(commandContext(cmd), sess, sess.Actions(nav))
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	switch res.Outcome {
	case jump.OutcomeNotFound, jump.OutcomeUnsupported, jump.OutcomeFailed:
		return &exitError{outcome: res.Outcome}
	}
	return nil
}

// parsePosition splits "file:line" into a path and a 1-based line.
func parsePosition(at string) (string, int, error) {
	i := strings.LastIndex(at, ":")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid position %q: expected file:line", at)
	}
	line, err := strconv.Atoi(at[i+1:])
	if err != nil || line < 1 {
		return "", 0, fmt.Errorf("invalid position %q: line must be a positive number", at)
	}
	return at[:i], line, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/lens"
	"github.com/mvp-joe/protolink/internal/session"
	"github.com/spf13/cobra"
)

var (
	lensFlags jumpFlags
	lensRun   int
)

var lensCmd = &cobra.Command{
	Use:   "lens <file>",
	Short: "List the navigation annotations of a proto or Go file",
	Long: `List one annotation per rpc in a .proto file, or per RPC-style method in
a .go file. With --run the annotation on the given line is invoked.

Examples:
  protolink lens api/user.proto
  protolink lens internal/server/user.go --run 42`,
	Args: cobra.ExactArgs(1),
	RunE: runLens,
}

func init() {
	rootCmd.AddCommand(lensCmd)
	lensFlags.register(lensCmd)
	lensCmd.Flags().IntVar(&lensRun, "run", 0, "Invoke the annotation on this 1-based line")
}

func runLens(cmd *cobra.Command, args []string) error {
	file := args[0]

	if lensRun > 0 {
		return runJump(cmd, &lensFlags, func(ctx context.Context, sess *session.Session, actions *jump.Actions) (jump.Result, error) {
			annotations, err := sess.Annotations(ctx, file)
			if err != nil {
				return jump.Result{}, err
			}
			a, ok := lens.At(annotations, lensRun-1)
			if !ok {
				return jump.Result{}, fmt.Errorf("no annotation on %s:%d", file, lensRun)
			}
			return actions.Invoke(ctx, a.Action, a.Arguments), nil
		})
	}

	sess, err := loadSession(nil)
	if err != nil {
		return err
	}
	annotations, err := sess.Annotations(commandContext(cmd), file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lensFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if annotations == nil {
			annotations = []lens.Annotation{}
		}
		return enc.Encode(annotations)
	}

	for _, a := range annotations {
		fmt.Fprintf(out, "%d\t%s\t%s\n", a.Line+1, a.Title, a.Tooltip)
	}
	return nil
}

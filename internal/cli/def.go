package cli

import (
	"context"
	"errors"

	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/session"
	"github.com/spf13/cobra"
)

var (
	defFlags    jumpFlags
	defAt       string
	defReceiver string
)

var defCmd = &cobra.Command{
	Use:   "def [method]",
	Short: "Find the proto rpc a Go method implements",
	Long: `Find the rpc declarations in .proto files that a Go method implements.

The method is named directly, or by its position in a Go file with --at.

Examples:
  protolink def GetUser --receiver userServer
  protolink def --at internal/server/user.go:42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDef,
}

func init() {
	rootCmd.AddCommand(defCmd)
	defFlags.register(defCmd)
	defCmd.Flags().StringVar(&defAt, "at", "", "Go position as file:line")
	defCmd.Flags().StringVar(&defReceiver, "receiver", "", "Receiver type of the method")
}

func runDef(cmd *cobra.Command, args []string) error {
	return runJump(cmd, &defFlags, func(ctx context.Context, sess *session.Session, actions *jump.Actions) (jump.Result, error) {
		var target jump.DefinitionArgs
		if defAt != "" {
			file, line, err := parsePosition(defAt)
			if err != nil {
				return jump.Result{}, err
			}
			target, err = sess.DefinitionAt(ctx, file, line-1)
			if err != nil {
				return jump.Result{}, err
			}
		} else {
			if len(args) != 1 {
				return jump.Result{}, errors.New("method is required unless --at is given")
			}
			target = jump.DefinitionArgs{Method: args[0]}
		}

		if defReceiver != "" {
			target.ReceiverType = defReceiver
		}
		return actions.JumpToDefinition(ctx, target), nil
	})
}

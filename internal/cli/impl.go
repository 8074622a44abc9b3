package cli

import (
	"context"
	"errors"

	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/session"
	"github.com/spf13/cobra"
)

var (
	implFlags  jumpFlags
	implAt     string
	implInput  string
	implOutput string
	implLang   string
)

var implCmd = &cobra.Command{
	Use:   "impl [service method]",
	Short: "Find the Go implementations of an rpc",
	Long: `Find the methods that implement a gRPC rpc declared in a .proto file.

The rpc is named either by service and method, or by its position in a
proto file with --at. A single match is printed as file:line:column; with
several matches you are asked to pick one.

Examples:
  protolink impl UserService GetUser
  protolink impl --at api/user.proto:12
  protolink impl UserService GetUser --no-prompt`,
	Args: cobra.MaximumNArgs(2),
	RunE: runImpl,
}

func init() {
	rootCmd.AddCommand(implCmd)
	implFlags.register(implCmd)
	implCmd.Flags().StringVar(&implAt, "at", "", "Proto position as file:line")
	implCmd.Flags().StringVar(&implInput, "input", "", "Request message type")
	implCmd.Flags().StringVar(&implOutput, "output", "", "Response message type")
	implCmd.Flags().StringVar(&implLang, "lang", "", "Implementation language (default from config)")
}

func runImpl(cmd *cobra.Command, args []string) error {
	return runJump(cmd, &implFlags, func(ctx context.Context, sess *session.Session, actions *jump.Actions) (jump.Result, error) {
		var target jump.ImplementationArgs
		if implAt != "" {
			file, line, err := parsePosition(implAt)
			if err != nil {
				return jump.Result{}, err
			}
			target, err = sess.ImplementationAt(ctx, file, line-1)
			if err != nil {
				return jump.Result{}, err
			}
		} else {
			if len(args) != 2 {
				return jump.Result{}, errors.New("service and method are required unless --at is given")
			}
			target = jump.ImplementationArgs{
				Service:  args[0],
				Method:   args[1],
				Language: sess.Config.Search.Language,
			}
		}

		if implInput != "" {
			target.InputType = implInput
		}
		if implOutput != "" {
			target.OutputType = implOutput
		}
		if implLang != "" {
			target.Language = implLang
		}
		return actions.JumpToImplementation(ctx, target), nil
	})
}

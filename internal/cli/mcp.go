package cli

import (
	"fmt"
	"log/slog"

	"github.com/mvp-joe/protolink/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for proto navigation",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
move between .proto declarations and their Go implementations.

The MCP server:
- Provides the protolink_implementations, protolink_definitions and
  protolink_annotations tools
- Watches the workspace and drops cached file contents on change
- Communicates via stdio (standard MCP transport)

Example:
  protolink mcp --root ~/src/myservice`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(nil)
	if err != nil {
		return err
	}

	server := mcp.NewMCPServer(sess, Version, slog.Default().With("component", "mcp"))
	if err := server.Serve(commandContext(cmd)); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

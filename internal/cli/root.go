package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/config"
	"github.com/mvp-joe/protolink/internal/session"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "protolink",
	Short: "Navigate between gRPC proto declarations and their Go implementations",
	Long: `Protolink links the rpc declarations in .proto files to the Go methods
that implement them, and back.

Use it from a terminal, or run "protolink mcp" to expose the same lookups
to a coding assistant over the Model Context Protocol.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.protolink/config.yml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadSession loads the workspace configuration and builds a session.
func loadSession(reporter batch.Reporter) (*session.Session, error) {
	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = wd
	}

	cfg, err := config.NewLoader(root, cfgFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return session.New(root, cfg, session.Options{
		Reporter: reporter,
		Logger:   slog.Default(),
	})
}

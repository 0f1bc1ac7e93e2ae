// glue - command-driven HTTP orchestration tool
// License: MIT

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freitascorp/glue/pkg/config"
	"github.com/freitascorp/glue/pkg/gluerunner"
	"github.com/freitascorp/glue/pkg/glueshell"
	"github.com/freitascorp/glue/pkg/logger"
	"github.com/freitascorp/glue/pkg/tui"
)

// ------------------------------------------------------------------
// Global flags
// ------------------------------------------------------------------

var (
	flagFile    string
	flagVerbose bool
	flagDebug   bool
)

// ------------------------------------------------------------------
// Root command
// ------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glue [REQUEST]",
		Short: "glue — command-driven HTTP orchestration",
		Long: `glue parses compact textual commands describing HTTP requests with
nestable {…} dependencies, runs them layer by layer in parallel, and
prints the final response. Results can be saved by name and reused by
later commands through the req pseudo-method.

With no REQUEST and no --file, glue starts an interactive session.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				logger.SetLevel(logger.DEBUG)
			} else {
				logger.SetLevel(logger.ERROR)
			}
		},
		RunE:          runRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Read the glue script from a file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print request info for every dispatched node")
	root.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(newVersionCmd())

	return root
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(config.DefaultPath())
	if err != nil {
		return err
	}
	if cfg.NoColor {
		tui.SetColorEnabled(false)
	}
	verbose := flagVerbose || cfg.Verbose

	if flagFile != "" && len(args) > 0 {
		return fmt.Errorf("pass either a REQUEST argument or --file, not both")
	}

	stack := gluerunner.NewStack()
	stack.SetTimeout(cfg.Timeout())

	ctx := context.Background()

	switch {
	case flagFile != "":
		if err := stack.PushFile(flagFile, verbose); err != nil {
			return err
		}
	case len(args) == 1:
		if err := stack.PushCommand(args[0], verbose); err != nil {
			return err
		}
	default:
		shell := glueshell.NewShell(stack, verbose, cfg.HistoryFile)
		return shell.Run(ctx)
	}

	// Single-shot mode: run every pushed command in order, printing
	// each result; the first failure ends the invocation non-zero.
	for stack.Pending() > 0 {
		if err := stack.ExecuteNext(ctx); err != nil {
			return err
		}
		fmt.Println(stack.Current().Result)
	}

	return nil
}

// ------------------------------------------------------------------
// version
// ------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

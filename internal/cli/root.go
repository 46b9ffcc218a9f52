// Package cli is the cmdeck command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/logging"
)

// Version is set at build time via
// -ldflags "-X github.com/waabox/cmdeck/internal/cli.Version=x.y.z".
var Version = "dev"

// rootOptions holds the global flag values shared by all subcommands.
type rootOptions struct {
	verbose    bool
	quiet      bool
	json       bool
	program    string
	configPath string
}

// newRootCmd builds a fresh command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cmdeck",
		Short: "Drive Cloud Manager pipelines and environment logs from the terminal",
		Long: `cmdeck talks to the Cloud Manager API: list programs, pipelines and
environments, start, advance or cancel pipeline executions, read quality gate
results, and tail or download environment logs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("verbose") && os.Getenv("CMDECK_VERBOSE") != "" {
				opts.verbose = true
			}
			jsonFormat := os.Getenv("CMDECK_LOG_FORMAT") == "json"
			logging.Setup(opts.verbose, opts.quiet, jsonFormat)
			logging.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose (debug) output (env: CMDECK_VERBOSE)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress all log output except errors")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVarP(&opts.program, "program", "p", "", "Program ID (env: CM_PROGRAM_ID, config: cloudmanager.program_id)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml (default ~/.config/cmdeck/config.toml)")

	cmd.AddCommand(
		newProgramsCmd(opts),
		newPipelinesCmd(opts),
		newUpdatePipelineCmd(opts),
		newEnvironmentsCmd(opts),
		newLogOptionsCmd(opts),
		newCurrentExecutionCmd(opts),
		newStartExecutionCmd(opts),
		newCancelCurrentExecutionCmd(opts),
		newAdvanceCurrentExecutionCmd(opts),
		newQualityGateCmd(opts),
		newTailLogCmd(opts),
		newDownloadLogsCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

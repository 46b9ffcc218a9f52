package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the cmdeck configuration file",
	}
	cmd.AddCommand(newConfigSetCmd(opts), newConfigPathCmd(opts))
	return cmd
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value and save the file. Keys:\n  " +
			strings.Join(config.Keys, "\n  "),
		Example: `  cmdeck config set cloudmanager.program_id 12345
  cmdeck config set logs.tail_backoff 5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile()
			cfg, err := config.ReadFile(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], path)
			return nil
		},
	}
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configFile())
			return nil
		},
	}
}

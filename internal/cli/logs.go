package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/logs"
)

func newTailLogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-log <environment-id> <service> <name>",
		Short: "Follow an environment log as it is written",
		Long: `Print bytes appended to today's log file of a service until interrupted.
Around UTC midnight the tail follows the new day's file.`,
		Example: `  cmdeck tail-log 20 author aemerror`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tailer := logs.NewTailer(s.svc,
				logs.WithBackoff(s.cfg.TailBackoffOrDefault()),
				logs.WithRolloverWindow(s.cfg.RolloverWindowOrDefault()),
			)
			target := logs.Target{ProgramID: s.programID, EnvironmentID: args[0], Service: args[1], Name: args[2]}
			err = tailer.Tail(ctx, target, cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newDownloadLogsCmd(opts *rootOptions) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download-logs <environment-id> <service> <name> [days]",
		Short: "Download and decompress environment log files",
		Long: `Download the log files of the last [days] days (default 1) of a service.
Files are written as <env>-<service>-<name>-<date>[-<part>].log.`,
		Example: `  cmdeck download-logs 20 author aemerror 3 --output-dir ./logs`,
		Args:    cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 1
			if len(args) == 4 {
				n, err := strconv.Atoi(args[3])
				if err != nil || n < 1 {
					return fmt.Errorf("days must be a positive integer, got %q", args[3])
				}
				days = n
			}
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			dir := outputDir
			if dir == "" {
				dir = s.cfg.OutputDirOrDefault()
			}

			results, err := logs.NewDownloader(s.svc, nil).DownloadAll(cmd.Context(), logs.DownloadRequest{
				Target:    logs.Target{ProgramID: s.programID, EnvironmentID: args[0], Service: args[1], Name: args[2]},
				Days:      days,
				OutputDir: dir,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No log files available.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintln(out, r.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to write log files to (config: logs.output_dir)")
	return cmd
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/cloudmanager"
	"github.com/waabox/cmdeck/internal/domain"
)

func printExecution(w io.Writer, asJSON bool, exec domain.Execution) error {
	v := toExecutionView(exec)
	if asJSON {
		return writeJSON(w, v)
	}
	fmt.Fprintf(w, "Execution %s of pipeline %s: %s (trigger %s, started %s)\n",
		v.ID, v.PipelineID, v.Status, v.Trigger, timestamp(v.CreatedAt))
	tw := newTable(w)
	fmt.Fprintln(tw, "ACTION\tENVIRONMENT\tSTATUS\tSTARTED\tFINISHED")
	for _, s := range v.Steps {
		env := s.Environment
		if env == "" {
			env = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Action, env, s.Status, timestamp(s.StartedAt), timestamp(s.FinishedAt))
	}
	return tw.Flush()
}

func newCurrentExecutionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "current-execution <pipeline-id>",
		Short: "Show the current execution of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			exec, err := s.svc.CurrentExecution(cmd.Context(), s.programID, args[0])
			if err != nil {
				return err
			}
			return printExecution(cmd.OutOrStdout(), opts.json, exec)
		},
	}
}

func newStartExecutionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start-execution <pipeline-id>",
		Short: "Start a new execution of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			exec, err := s.svc.StartExecution(cmd.Context(), s.programID, args[0])
			if err != nil {
				return err
			}
			return printExecution(cmd.OutOrStdout(), opts.json, exec)
		},
	}
}

func newCancelCurrentExecutionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-current-execution <pipeline-id>",
		Short: "Cancel the current step of a pipeline's running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			if err := s.svc.CancelCurrentExecution(cmd.Context(), s.programID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled current execution of pipeline %s\n", args[0])
			return nil
		},
	}
}

func newAdvanceCurrentExecutionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advance-current-execution <pipeline-id>",
		Short: "Advance the waiting step of a pipeline's running execution",
		Long: `Advance the step that is waiting for input. Approval steps are approved,
quality gates are passed by overriding their failing important metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			if err := s.svc.AdvanceCurrentExecution(cmd.Context(), s.programID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Advanced current execution of pipeline %s\n", args[0])
			return nil
		},
	}
}

func newQualityGateCmd(opts *rootOptions) *cobra.Command {
	var executionID, gate string

	cmd := &cobra.Command{
		Use:     "quality-gate <pipeline-id>",
		Short:   "Show the metrics of a quality gate in an execution",
		Example: fmt.Sprintf(`  cmdeck quality-gate 7 --execution 42 --gate %s`, cloudmanager.GateSecurity),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			metrics, err := s.svc.QualityGateResults(cmd.Context(), s.programID, args[0], executionID, gate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, metrics)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "METRIC\tSEVERITY\tPASSED\tACTUAL\tEXPECTED")
			for _, m := range metrics {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%v\t%v\n", m.Name(), m.Severity(), m.Passed(), valueOr(m["actualValue"]), valueOr(m["expectedValue"]))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&executionID, "execution", "", "Execution ID")
	cmd.Flags().StringVar(&gate, "gate", "", fmt.Sprintf("Gate name (%s, %s, %s, %s, %s)",
		cloudmanager.GateSecurity, cloudmanager.GatePerformance,
		cloudmanager.GateDevDeploy, cloudmanager.GateStageDeploy, cloudmanager.GateProdDeploy))
	_ = cmd.MarkFlagRequired("execution")
	_ = cmd.MarkFlagRequired("gate")
	return cmd
}

func valueOr(v any) any {
	if v == nil {
		return "-"
	}
	return v
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnvironmentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "environments",
		Short: "List the environments of a program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			envs, err := s.svc.ResolveEnvironments(cmd.Context(), s.programID)
			if err != nil {
				return err
			}

			views := make([]environmentView, 0, len(envs))
			for _, e := range envs {
				views = append(views, environmentView{ID: e.ID, Name: e.Name, Type: e.Type, Namespace: e.Namespace, Cluster: e.Cluster})
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, views)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Name, v.Type)
			}
			return tw.Flush()
		},
	}
}

func newLogOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log-options <environment-id>",
		Short: "List the service/name pairs an environment produces logs for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			options, err := s.svc.AvailableLogOptions(cmd.Context(), s.programID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, options)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "SERVICE\tNAME")
			for _, o := range options {
				fmt.Fprintf(tw, "%s\t%s\n", o.Service, o.Name)
			}
			return tw.Flush()
		},
	}
}

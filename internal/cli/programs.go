package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProgramsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List the programs visible to the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(false)
			if err != nil {
				return err
			}
			programs, err := s.svc.ListPrograms(cmd.Context())
			if err != nil {
				return err
			}

			views := make([]programView, 0, len(programs))
			for _, p := range programs {
				views = append(views, programView{ID: p.ID, Name: p.Name, Enabled: p.Enabled})
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, views)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tENABLED")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%t\n", v.ID, v.Name, v.Enabled)
			}
			return tw.Flush()
		},
	}
}

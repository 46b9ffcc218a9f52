package cli

import (
	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/tui"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive view of a program's pipelines and their current executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			return tui.Run(s.programID, s.svc)
		},
	}
}

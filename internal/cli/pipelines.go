package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waabox/cmdeck/internal/cloudmanager"
)

func newPipelinesCmd(opts *rootOptions) *cobra.Command {
	var busy bool

	cmd := &cobra.Command{
		Use:   "pipelines",
		Short: "List the pipelines of a program",
		Example: `  cmdeck pipelines --program 12345
  cmdeck pipelines --busy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			pipelines, err := s.svc.ResolvePipelines(cmd.Context(), s.programID, cloudmanager.PipelineFilter{Busy: busy})
			if err != nil {
				return err
			}

			views := make([]pipelineView, 0, len(pipelines))
			for _, p := range pipelines {
				views = append(views, toPipelineView(p))
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, views)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTRIGGER\tBRANCH\tUPDATED")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Status, v.Trigger, v.Branch, timestamp(v.UpdatedAt))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&busy, "busy", false, "Only list pipelines with an execution in progress")
	return cmd
}

func newUpdatePipelineCmd(opts *rootOptions) *cobra.Command {
	var update cloudmanager.PipelineUpdate

	cmd := &cobra.Command{
		Use:     "update-pipeline <pipeline-id>",
		Short:   "Change the branch or repository a pipeline builds from",
		Example: `  cmdeck update-pipeline 7 --branch release/2026.10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if update.Branch == "" && update.RepositoryID == "" {
				return fmt.Errorf("nothing to update: pass --branch and/or --repository")
			}
			s, err := opts.session(true)
			if err != nil {
				return err
			}
			pipeline, err := s.svc.UpdatePipeline(cmd.Context(), s.programID, args[0], update)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), toPipelineView(pipeline))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated pipeline %s\n", pipeline.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&update.Branch, "branch", "", "Git branch of the BUILD phase")
	cmd.Flags().StringVar(&update.RepositoryID, "repository", "", "Repository ID of the BUILD phase")
	return cmd
}

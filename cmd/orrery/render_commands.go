package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"orrery/internal/ffmpeg"
	"orrery/internal/render"
	"orrery/internal/staging"
	"orrery/internal/timeline"
)

const staleWorkspaceAge = 24 * time.Hour

func newRenderCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render timeline videos and still images",
	}
	cmd.AddCommand(newRenderVideoCommand(ctx))
	cmd.AddCommand(newRenderImageCommand(ctx))
	cmd.AddCommand(newRenderJobCommand(ctx))
	cmd.AddCommand(newRenderJobsCommand(ctx))
	return cmd
}

func (c *commandContext) generator(cmd *cobra.Command) (*timeline.Generator, error) {
	svc, err := c.service(cmd.Context())
	if err != nil {
		return nil, err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()

	staging.CleanStale(cfg.Paths.StagingDir, staleWorkspaceAge, logger)

	encoder := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.Video.FFmpegBinary),
		ffmpeg.WithTimeout(time.Duration(cfg.Video.EncodeTimeout)*time.Second),
	)
	return timeline.NewGenerator(cfg, st, svc, render.New(cfg), encoder, logger), nil
}

func newRenderVideoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "video <user-id>",
		Short: "Render the full snapshot timeline as an MP4",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := ctx.generator(cmd)
			if err != nil {
				return err
			}
			job, err := gen.GenerateVideo(cmd.Context(), args[0])
			if err != nil {
				if job != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Job %d failed: %s\n", job.ID, job.ErrorMessage)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d complete: %s\n", job.ID, job.OutputPath)
			return nil
		},
	}
}

func newRenderImageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "image <user-id>",
		Short: "Render the current solar system as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := ctx.generator(cmd)
			if err != nil {
				return err
			}
			job, err := gen.GenerateStill(cmd.Context(), args[0])
			if err != nil {
				if job != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Job %d failed: %s\n", job.ID, job.ErrorMessage)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d complete: %s\n", job.ID, job.OutputPath)
			return nil
		},
	}
}

func newRenderJobCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "job <user-id> <job-id>",
		Short: "Show one render job's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := ctx.generator(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[1], err)
			}
			job, err := gen.Job(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %d (%s): %s, %.0f%% %s\n",
				job.ID, job.Kind, job.Status, job.ProgressPercent, job.ProgressMessage)
			if job.OutputPath != "" {
				fmt.Fprintf(out, "Output: %s\n", job.OutputPath)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "Error (%s): %s\n", job.ErrorKind, job.ErrorMessage)
			}
			return nil
		},
	}
}

func newRenderJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "jobs <user-id>",
		Short: "List recent render jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := ctx.generator(cmd)
			if err != nil {
				return err
			}
			jobs, err := gen.Jobs(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				detail := job.OutputPath
				if job.ErrorMessage != "" {
					detail = job.ErrorMessage
				}
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					string(job.Kind),
					string(job.Status),
					fmt.Sprintf("%.0f%%", job.ProgressPercent),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Status", "Progress", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum jobs to show")
	return cmd
}

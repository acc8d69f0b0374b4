package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orrery/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config file: %s\n\n", ctx.configPath)
			}
			rows := [][]string{
				{"data_dir", cfg.Paths.DataDir},
				{"staging_dir", cfg.Paths.StagingDir},
				{"generated_dir", cfg.Paths.GeneratedDir},
				{"log_dir", cfg.Paths.LogDir},
				{"fps", fmt.Sprintf("%d", cfg.Video.FPS)},
				{"hold_seconds", fmt.Sprintf("%g", cfg.Video.HoldSeconds)},
				{"transition_frames", fmt.Sprintf("%d", cfg.Video.TransitionFrames)},
				{"ffmpeg_binary", cfg.Video.FFmpegBinary},
				{"render_workers", fmt.Sprintf("%d", cfg.Video.RenderWorkers)},
				{"frame_size", fmt.Sprintf("%dx%d", cfg.Render.Width, cfg.Render.Height)},
				{"log_format", cfg.Logging.Format},
				{"log_level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

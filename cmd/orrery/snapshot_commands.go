package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"orrery/internal/solar"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect timeline snapshots",
	}
	cmd.AddCommand(newSnapshotListCommand(ctx))
	cmd.AddCommand(newSnapshotShowCommand(ctx))
	return cmd
}

func newSnapshotListCommand(ctx *commandContext) *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List snapshots oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			summaries, total, err := svc.ListSnapshots(cmd.Context(), args[0], page, perPage)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{
					s.ID,
					string(s.ChangeType),
					s.ChangeSummary,
					s.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Change", "Summary", "Captured"}, rows, nil))
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d snapshots\n", page, total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Snapshots per page")
	return cmd
}

func newSnapshotShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id> <snapshot-id>",
		Short: "Print a snapshot's full captured state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			snapshot, err := svc.GetSnapshot(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			doc, err := solar.DecodeState(snapshot)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n%s\n",
				snapshot.ChangeType, snapshot.ChangeSummary, out)
			return nil
		},
	}
}

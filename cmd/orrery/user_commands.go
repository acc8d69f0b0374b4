package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"orrery/internal/solar"
)

var scoreBucketOrder = []string{"0-25", "26-50", "51-75", "76-100", "unscored"}

func newUserCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts and their solar systems",
	}
	cmd.AddCommand(newUserCreateCommand(ctx))
	cmd.AddCommand(newUserStatsCommand(ctx))
	return cmd
}

func newUserCreateCommand(ctx *commandContext) *cobra.Command {
	var email, avatar string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a user and their solar system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			user, system, err := svc.CreateUser(cmd.Context(), solar.NewUserParams{
				Name:      args[0],
				Email:     email,
				AvatarURL: avatar,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User ID:         %s\n", user.ID)
			fmt.Fprintf(out, "Solar system ID: %s\n", system.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	return cmd
}

func newUserStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Show analytics for a user's solar system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "People in orbit:  %d\n", stats.TotalPeople)
			fmt.Fprintf(out, "Snapshots:        %d\n", stats.TotalSnapshots)
			fmt.Fprintf(out, "Average distance: %.4f\n", stats.AverageDistance)
			if stats.ClosestPerson != nil {
				fmt.Fprintf(out, "Closest:          %s (%.4f)\n", stats.ClosestPerson.Name, stats.ClosestPerson.Distance)
			}
			if stats.FurthestPerson != nil {
				fmt.Fprintf(out, "Furthest:         %s (%.4f)\n", stats.FurthestPerson.Name, stats.FurthestPerson.Distance)
			}

			if len(stats.TagDistribution) > 0 {
				names := make([]string, 0, len(stats.TagDistribution))
				for name := range stats.TagDistribution {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, fmt.Sprintf("%d", stats.TagDistribution[name])})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Tag", "People"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			rows := make([][]string, 0, len(scoreBucketOrder))
			for _, bucket := range scoreBucketOrder {
				rows = append(rows, []string{bucket, fmt.Sprintf("%d", stats.ScoreDistribution[bucket])})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"Score", "People"}, rows, []columnAlignment{alignLeft, alignRight}))

			if len(stats.TimelineActivity) > 0 {
				rows := make([][]string, 0, len(stats.TimelineActivity))
				for _, bucket := range stats.TimelineActivity {
					rows = append(rows, []string{bucket.Date, fmt.Sprintf("%d", bucket.ChangeCount)})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Date", "Changes"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}
}

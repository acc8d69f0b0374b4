package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"orrery/internal/solar"
)

func newPersonCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage people in a solar system",
	}
	cmd.AddCommand(newPersonAddCommand(ctx))
	cmd.AddCommand(newPersonListCommand(ctx))
	cmd.AddCommand(newPersonMoveCommand(ctx))
	cmd.AddCommand(newPersonTagCommand(ctx))
	cmd.AddCommand(newPersonRemoveCommand(ctx))
	cmd.AddCommand(newPersonBulkMoveCommand(ctx))
	return cmd
}

func newPersonAddCommand(ctx *commandContext) *cobra.Command {
	var x, y, orbitSpeed, planetSize float64
	var tagID, avatar, color, notes string
	var score int
	cmd := &cobra.Command{
		Use:   "add <user-id> <name>",
		Short: "Add a person to the solar system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			params := solar.NewPersonParams{
				Name:        args[1],
				XPosition:   x,
				YPosition:   y,
				TagID:       tagID,
				AvatarURL:   avatar,
				OrbitSpeed:  orbitSpeed,
				PlanetSize:  planetSize,
				CustomColor: color,
				Notes:       notes,
			}
			if cmd.Flags().Changed("score") {
				params.RelationshipScore = &score
			}
			person, err := svc.AddPerson(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) at distance %.4f\n",
				person.Name, person.ID, person.DistanceFromCenter)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&x, "x", "x", 0, "X position in [-1, 1]")
	cmd.Flags().Float64VarP(&y, "y", "y", 0, "Y position in [-1, 1]")
	cmd.Flags().StringVar(&tagID, "tag", "", "Tag ID")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	cmd.Flags().Float64Var(&orbitSpeed, "orbit-speed", 0, "Orbit animation speed")
	cmd.Flags().Float64Var(&planetSize, "planet-size", 0, "Planet size multiplier")
	cmd.Flags().StringVar(&color, "color", "", "Custom hex color")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().IntVar(&score, "score", 0, "Relationship score (0-100)")
	return cmd
}

func newPersonListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List active people",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			people, err := svc.ListPeople(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(people) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No people in orbit yet.")
				return nil
			}

			tags, err := svc.ListTags(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tagNames := make(map[string]string, len(tags))
			for _, tag := range tags {
				tagNames[tag.ID] = tag.Name
			}

			rows := make([][]string, 0, len(people))
			for _, person := range people {
				rows = append(rows, []string{
					person.ID,
					person.Name,
					tagNames[person.TagID],
					fmt.Sprintf("%.2f, %.2f", person.XPosition, person.YPosition),
					fmt.Sprintf("%.4f", person.DistanceFromCenter),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Tag", "Position", "Distance"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newPersonMoveCommand(ctx *commandContext) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "move <user-id> <person-id>",
		Short: "Move a person to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			params := solar.UpdatePersonParams{}
			if cmd.Flags().Changed("x") {
				params.XPosition = &x
			}
			if cmd.Flags().Changed("y") {
				params.YPosition = &y
			}
			person, err := svc.UpdatePerson(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to (%.2f, %.2f), distance %.4f\n",
				person.Name, person.XPosition, person.YPosition, person.DistanceFromCenter)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&x, "x", "x", 0, "New X position in [-1, 1]")
	cmd.Flags().Float64VarP(&y, "y", "y", 0, "New Y position in [-1, 1]")
	return cmd
}

func newPersonTagCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <user-id> <person-id> <tag-id>",
		Short: "Change a person's tag (empty tag-id clears it)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			tagID := args[2]
			person, err := svc.UpdatePerson(cmd.Context(), args[0], args[1], solar.UpdatePersonParams{
				TagID: &tagID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", person.Name)
			return nil
		},
	}
	return cmd
}

func newPersonRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id> <person-id>",
		Short: "Remove a person (history keeps their past snapshots)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.RemovePerson(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

// newPersonBulkMoveCommand repositions several people in one snapshot. Each
// argument is person-id=x,y.
func newPersonBulkMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-move <user-id> <person-id>=<x>,<y> ...",
		Short: "Reposition several people in a single change",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			updates := make([]solar.PositionUpdate, 0, len(args)-1)
			for _, arg := range args[1:] {
				update, err := parsePositionUpdate(arg)
				if err != nil {
					return err
				}
				updates = append(updates, update)
			}
			people, err := svc.BulkUpdatePositions(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d people.\n", len(people))
			return nil
		},
	}
}

func parsePositionUpdate(arg string) (solar.PositionUpdate, error) {
	id, pos, ok := strings.Cut(arg, "=")
	if !ok {
		return solar.PositionUpdate{}, fmt.Errorf("invalid update %q, want person-id=x,y", arg)
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return solar.PositionUpdate{}, fmt.Errorf("invalid position in %q, want x,y", arg)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return solar.PositionUpdate{}, fmt.Errorf("invalid x in %q: %w", arg, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return solar.PositionUpdate{}, fmt.Errorf("invalid y in %q: %w", arg, err)
	}
	return solar.PositionUpdate{PersonID: strings.TrimSpace(id), XPosition: x, YPosition: y}, nil
}

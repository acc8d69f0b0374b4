package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orrery/internal/solar"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(newTagListCommand(ctx))
	cmd.AddCommand(newTagCreateCommand(ctx))
	cmd.AddCommand(newTagUpdateCommand(ctx))
	cmd.AddCommand(newTagDeleteCommand(ctx))
	return cmd
}

func newTagListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List predefined and custom tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			tags, err := svc.ListTags(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				kind := "custom"
				if tag.IsPredefined {
					kind = "predefined"
				}
				rows = append(rows, []string{tag.ID, tag.Name, tag.Color, tag.Icon, kind})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Color", "Icon", "Kind"}, rows, nil))
			return nil
		},
	}
}

func newTagCreateCommand(ctx *commandContext) *cobra.Command {
	var color, icon string
	cmd := &cobra.Command{
		Use:   "create <user-id> <name>",
		Short: "Create a custom tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			tag, err := svc.CreateTag(cmd.Context(), args[0], solar.TagParams{
				Name:  args[1],
				Color: color,
				Icon:  icon,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tag ID: %s\n", tag.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "#FFFFFF", "Hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon glyph")
	return cmd
}

func newTagUpdateCommand(ctx *commandContext) *cobra.Command {
	var name, color, icon string
	cmd := &cobra.Command{
		Use:   "update <user-id> <tag-id>",
		Short: "Update a custom tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			var params solar.UpdateTagParams
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("color") {
				params.Color = &color
			}
			if cmd.Flags().Changed("icon") {
				params.Icon = &icon
			}
			tag, err := svc.UpdateTag(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", tag.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "New icon glyph")
	return cmd
}

func newTagDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id> <tag-id>",
		Short: "Delete a custom tag, untagging its people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteTag(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}

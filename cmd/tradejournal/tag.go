// ABOUTME: CLI commands for the error-tag registry and bulk retagging.
// ABOUTME: Tags can be addressed by numeric ID or by exact name.
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/spf13/cobra"
)

var retagErrors string

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"tags"},
	Short:   "Manage mistake tags",
	Long: `Manage the registry of reusable mistake tags.

Tags are created automatically when a trade uses a new one. Renaming a tag
renames it on every trade. A tag can only be deleted once no trade uses it.

EXAMPLES:

  tradejournal tag list
  tradejournal tag add "Moved SL"
  tradejournal tag rename FOMO "Chasing price"
  tradejournal tag delete 7`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.AddTag(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to add tag: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Tag %q registered", args[0]))
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags with usage counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		usage, err := store.TagUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No tags registered.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, u := range usage {
			fmt.Fprintf(out, "%s %s %d\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", u.ID), 5)),
				padRight(u.Name, 28),
				u.Count)
		}
		return nil
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <id|name> <new-name>",
	Short: "Rename a tag on every trade",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := resolveTag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.RenameTag(cmd.Context(), tag.ID, args[1]); err != nil {
			if errors.Is(err, storage.ErrTagExists) {
				return fmt.Errorf("a tag named %q already exists", args[1])
			}
			return fmt.Errorf("failed to rename tag: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Renamed %q to %q", tag.Name, args[1]))
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete an unused tag",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := resolveTag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteTag(cmd.Context(), tag.ID); err != nil {
			if errors.Is(err, storage.ErrTagInUse) {
				return fmt.Errorf("tag %q is still used by trades; retag them first", tag.Name)
			}
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("✗ Deleted tag %q", tag.Name))
		return nil
	},
}

var retagCmd = &cobra.Command{
	Use:   "retag <id>...",
	Short: "Replace the mistake tags on trades",
	Long: `Replace the mistake tags on one or more trades in one step.

An empty --errors value clears every tag from the trades. Either all trades
are updated or none are.

EXAMPLES:

  tradejournal retag 12 13 14 --errors "FOMO, Late entry"
  tradejournal retag 12 --errors ""`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("errors") {
			return fmt.Errorf("--errors is required (use \"\" to clear)")
		}

		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		tags := models.ParseTags(retagErrors)
		if err := store.SetTradeErrors(cmd.Context(), ids, tags); err != nil {
			return fmt.Errorf("failed to retag: %w", err)
		}

		msg := fmt.Sprintf("✓ Updated %d trade(s)", len(ids))
		if len(tags) > 0 {
			msg += fmt.Sprintf(": %s", models.JoinTags(tags))
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("%s", msg))
		return nil
	},
}

// resolveTag finds a tag by numeric id, falling back to an exact name match.
func resolveTag(ctx context.Context, arg string) (*models.ErrorTag, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		tag, err := store.GetTag(ctx, id)
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	tags, err := store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.Name == arg {
			tag := t
			return &tag, nil
		}
	}
	return nil, fmt.Errorf("tag not found: %s", arg)
}

func init() {
	tagCmd.AddCommand(tagAddCmd, tagListCmd, tagRenameCmd, tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)

	retagCmd.Flags().StringVarP(&retagErrors, "errors", "e", "", "replacement tags (\"FOMO, No SL\")")
	rootCmd.AddCommand(retagCmd)
}

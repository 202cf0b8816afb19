package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/saved"
)

// shortIDLen is how much of an item ID list output shows. Any unique prefix
// of at least four characters is accepted as a reference.
const shortIDLen = 8

func newSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved filter patterns",
		Long: `Manage reusable, named filter patterns.

Items are referenced by ID, a unique ID prefix of at least four characters,
or name. Pinned items are offered as numbered toggles in the viewer.

Examples:
  linefilter saved add --name chores 'walk|dishes'
  linefilter saved pin chores
  linefilter saved list`,
	}

	cmd.AddCommand(
		newSavedAddCmd(),
		newSavedListCmd(),
		newSavedEditCmd(),
		newSavedRemoveCmd(),
		newSavedPinCmd("pin", true),
		newSavedPinCmd("unpin", false),
	)
	return cmd
}

func newSavedAddCmd() *cobra.Command {
	var (
		name string
		pin  bool
	)

	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Save a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			item, err := rt.catalog.Add(name, args[0])
			if err != nil {
				return err
			}
			rt.bus.Publish(event.NewSavedCatalogChangedEvent(item.ID, "add"))

			if pin {
				if item, err = rt.catalog.SetPinned(item.ID, true); err != nil {
					return err
				}
				rt.bus.Publish(event.NewSavedCatalogChangedEvent(item.ID, "pin"))
			}

			rt.logger.Info("saved pattern added", "item_id", item.ID, "pinned", item.Pinned)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", item.Label(), shortID(item.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name to refer to the pattern by")
	cmd.Flags().BoolVar(&pin, "pin", false, "Pin the pattern")
	return cmd
}

func newSavedListCmd() *cobra.Command {
	var pinnedOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved patterns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			items := rt.catalog.List()
			if pinnedOnly {
				items = rt.catalog.Pinned()
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved patterns.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPINNED\tPATTERN")
			for _, item := range items {
				pinned := ""
				if item.Pinned {
					pinned = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(item.ID), item.Name, pinned, item.Pattern)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&pinnedOnly, "pinned", false, "Only list pinned patterns")
	return cmd
}

func newSavedEditCmd() *cobra.Command {
	var (
		name    string
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Change the name or pattern of a saved item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit saved.Edit
			if cmd.Flags().Changed("name") {
				edit.Name = &name
			}
			if cmd.Flags().Changed("pattern") {
				edit.Pattern = &pattern
			}
			if edit.Name == nil && edit.Pattern == nil {
				return fmt.Errorf("nothing to change: pass --name or --pattern")
			}

			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			item, err := rt.catalog.Update(args[0], edit)
			if err != nil {
				return err
			}
			rt.bus.Publish(event.NewSavedCatalogChangedEvent(item.ID, "edit"))
			rt.logger.Info("saved pattern edited", "item_id", item.ID)

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", item.Label(), shortID(item.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name (empty removes the name)")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "New pattern")
	return cmd
}

func newSavedRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"remove"},
		Short:   "Delete a saved pattern",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			item, err := rt.catalog.Remove(args[0])
			if err != nil {
				return err
			}
			rt.bus.Publish(event.NewSavedCatalogChangedEvent(item.ID, "remove"))
			rt.logger.Info("saved pattern removed", "item_id", item.ID)

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", item.Label(), shortID(item.ID))
			return nil
		},
	}
}

func newSavedPinCmd(use string, pinned bool) *cobra.Command {
	short := "Pin a saved pattern"
	if !pinned {
		short = "Unpin a saved pattern"
	}

	return &cobra.Command{
		Use:   use + " <ref>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			item, err := rt.catalog.SetPinned(args[0], pinned)
			if err != nil {
				return err
			}
			rt.bus.Publish(event.NewSavedCatalogChangedEvent(item.ID, use))

			verb := "Pinned"
			if !pinned {
				verb = "Unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, item.Label(), shortID(item.ID))
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

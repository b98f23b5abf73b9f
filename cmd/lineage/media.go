package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Archive media files",
	}

	cmd.AddCommand(
		newMediaAddCmd(),
		newMediaFindCmd(),
		newMediaAttrCmd(),
		newMediaTagCmd(),
		newMediaTagsCmd(),
		newMediaPeopleCmd(),
	)

	return cmd
}

func newMediaAddCmd() *cobra.Command {
	var (
		attrs []string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "add LOCATION",
		Short: "Archive a media file",
		Long: `Archives a media file by its unique location.

Example:
  lineage media add photos/1955/harbour.jpg --attr date=1955-07 --attr "location=Halifax, Nova Scotia" --tag Travel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(attrs)
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				file, err := d.MediaHandler.HandleAdd(cmd.Context(), args[0], values, tags)
				if err != nil {
					return err
				}
				fmt.Printf("Archived %s (#%d)\n", file.Location, file.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "Attribute as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag (repeatable)")

	return cmd
}

func newMediaFindCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "find LOCATION",
		Short: "Show a media file and its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				info, err := d.MediaHandler.HandleFind(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == "json" {
					return printJSON(info)
				}
				fmt.Printf("#%d %s\n", info.File.ID, info.File.Location)
				printAttributes(info.Attributes)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")

	return cmd
}

func newMediaAttrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attr LOCATION KEY=VALUE...",
		Short: "Record attributes for a media file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.MediaHandler.HandleAttributes(cmd.Context(), args[0], values)
			})
		},
	}
}

func newMediaTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag LOCATION TAG...",
		Short: "Tag a media file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.MediaHandler.HandleTag(cmd.Context(), args[0], args[1:])
			})
		},
	}
}

func newMediaTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				tags, err := d.MediaHandler.HandleListTags(cmd.Context())
				if err != nil {
					return err
				}
				for _, tag := range tags {
					fmt.Println(tag)
				}
				return nil
			})
		},
	}
}

func newMediaPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people LOCATION [PERSON...]",
		Short: "Record who appears in a media file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.MediaHandler.HandlePeople(cmd.Context(), args[0], args[1:])
			})
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Record people and their families",
		Long: `Records people, their attributes, notes and family links.

A person argument is either an exact name or #<id>:
  lineage person find "Ada Lovelace"
  lineage person child #3 #7`,
	}

	cmd.AddCommand(
		newPersonAddCmd(),
		newPersonFindCmd(),
		newPersonAttrCmd(),
		newPersonNoteCmd(),
		newPersonReferenceCmd(),
		newPersonNotesCmd(),
		newPersonChildCmd(),
		newPersonMarryCmd(),
		newPersonDivorceCmd(),
		newPersonStatusCmd(),
	)

	return cmd
}

func newPersonAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				p, err := d.FamilyHandler.HandleAddPerson(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Added %s\n", personLabel(*p))
				return nil
			})
		},
	}
}

func newPersonFindCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "find PERSON",
		Short: "Show a person with attributes and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				info, err := d.FamilyHandler.HandleFind(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == "json" {
					return printJSON(info)
				}

				fmt.Println(personLabel(info.Person))
				printAttributes(info.Attributes)
				for _, a := range info.Annotations {
					fmt.Printf("  [%s] %s\n", a.Kind, a.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")

	return cmd
}

func newPersonAttrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attr PERSON KEY=VALUE...",
		Short: "Record attributes for a person",
		Long: `Records or replaces attributes. Keys containing "date" hold a date
written as YYYY, YYYY-MM or YYYY-MM-DD.

Example:
  lineage person attr "Ada Lovelace" "date of birth=1815-12-10" occupation=mathematician`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.FamilyHandler.HandleAttributes(cmd.Context(), args[0], values); err != nil {
					return err
				}
				fmt.Printf("Recorded %d attribute(s)\n", len(values))
				return nil
			})
		},
	}
}

func newPersonNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note PERSON TEXT",
		Short: "Add a note to a person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.FamilyHandler.HandleNote(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newPersonReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reference PERSON TEXT",
		Short: "Add a source reference to a person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.FamilyHandler.HandleReference(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newPersonNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes PERSON",
		Short: "List notes and references for a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				notes, err := d.FamilyHandler.HandleNotes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(notes) == 0 {
					fmt.Println("No notes or references.")
					return nil
				}
				for _, a := range notes {
					fmt.Printf("[%s] %s\n", a.Kind, a.Text)
				}
				return nil
			})
		},
	}
}

func newPersonChildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "child PARENT CHILD",
		Short: "Record a parent-child link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.FamilyHandler.HandleChild(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if !result.Added {
					fmt.Printf("%s is already a child of %s\n", personLabel(result.Child), personLabel(result.Parent))
					return nil
				}
				fmt.Printf("Recorded %s as a child of %s\n", personLabel(result.Child), personLabel(result.Parent))
				return nil
			})
		},
	}
}

func newPersonMarryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "marry PERSON PERSON",
		Short: "Record a marriage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.FamilyHandler.HandleMarry(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newPersonDivorceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "divorce PERSON PERSON",
		Short: "Record a divorce",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				return d.FamilyHandler.HandleDivorce(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newPersonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status PERSON PERSON",
		Short: "Show the latest partnering event of a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.FamilyHandler.HandleStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Printf("%s and %s: %s\n", personLabel(result.A), personLabel(result.B), result.Status)
				return nil
			})
		},
	}
}

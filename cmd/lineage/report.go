package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
)

type reportFlags struct {
	format      string
	generations int
	from        string
	to          string
}

func newReportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Query family lines and the media archive",
		Long: `Runs read-only reports over the selected tree.

Examples:
  lineage report descendants "Ada Lovelace" --generations 3
  lineage report relation #4 #9
  lineage report media-by-tag Travel --from 2019 --to 2021-06`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(flags.format)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.format, "format", "text", "Output format: text, json")

	cmd.AddCommand(
		newLineageReportCmd("descendants", "List descendants of a person", &flags),
		newLineageReportCmd("ancestors", "List ancestors of a person", &flags),
		newRelationReportCmd(&flags),
		newMediaReportCmd("media-by-tag TAG", "List media carrying a tag", &flags, cobra.ExactArgs(1),
			func(cmd *cobra.Command, h *handlers.ReportHandler, args []string, dates handlers.DateFilter) (*handlers.MediaReport, error) {
				return h.HandleMediaByTag(cmd.Context(), args[0], dates)
			}),
		newMediaReportCmd("media-by-location TEXT", "List media whose location contains text", &flags, cobra.ExactArgs(1),
			func(cmd *cobra.Command, h *handlers.ReportHandler, args []string, dates handlers.DateFilter) (*handlers.MediaReport, error) {
				return h.HandleMediaByLocation(cmd.Context(), args[0], dates)
			}),
		newMediaReportCmd("people-media [PERSON...]", "List media in which any of the people appear", &flags, cobra.ArbitraryArgs,
			func(cmd *cobra.Command, h *handlers.ReportHandler, args []string, dates handlers.DateFilter) (*handlers.MediaReport, error) {
				return h.HandlePeopleMedia(cmd.Context(), args, dates)
			}),
		newFamilyMediaReportCmd(&flags),
	)

	return cmd
}

func newLineageReportCmd(name, short string, flags *reportFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " PERSON",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				handle := d.ReportHandler.HandleDescendants
				if name == "ancestors" {
					handle = d.ReportHandler.HandleAncestors
				}

				report, err := handle(cmd.Context(), args[0], flags.generations)
				if err != nil {
					return err
				}
				if flags.format == "json" {
					return printJSON(report)
				}

				if len(report.People) == 0 {
					fmt.Printf("No %s of %s within %d generation(s).\n", name, personLabel(report.Root), report.Generations)
					return nil
				}
				fmt.Printf("%s of %s (%d generation(s)):\n", name, personLabel(report.Root), report.Generations)
				printPeople(report.People)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&flags.generations, "generations", "g", DefaultGenerations, "Number of generations to walk")

	return cmd
}

func newRelationReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "relation PERSON PERSON",
		Short: "Classify the biological relation of two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.ReportHandler.HandleRelation(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if flags.format == "json" {
					return printJSON(report)
				}

				fmt.Printf("%s and %s: %s\n", personLabel(report.A), personLabel(report.B), report.Description)
				if report.Relation != nil {
					fmt.Printf("  common ancestor: %s\n", personLabel(*report.Ancestor))
					fmt.Printf("  cousinship: %d, removal: %d\n", report.Relation.Cousinship, report.Relation.Removal)
				}
				return nil
			})
		},
	}
}

type mediaQuery func(cmd *cobra.Command, h *handlers.ReportHandler, args []string, dates handlers.DateFilter) (*handlers.MediaReport, error)

func newMediaReportCmd(use, short string, flags *reportFlags, args cobra.PositionalArgs, query mediaQuery) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dates handlers.DateFilter
			if cmd.Flags().Changed("from") {
				dates.From = &flags.from
			}
			if cmd.Flags().Changed("to") {
				dates.To = &flags.to
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := query(cmd, d.ReportHandler, args, dates)
				if err != nil {
					return err
				}
				return printMediaReport(report, flags.format)
			})
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Earliest date (YYYY, YYYY-MM or YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "Latest date (YYYY, YYYY-MM or YYYY-MM-DD)")

	return cmd
}

func newFamilyMediaReportCmd(flags *reportFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "family-media PERSON",
		Short: "List media in which the person's children appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.ReportHandler.HandleFamilyMedia(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printMediaReport(report, flags.format)
			})
		},
	}
}

func printMediaReport(report *handlers.MediaReport, format string) error {
	if format == "json" {
		return printJSON(report)
	}
	if len(report.Media) == 0 {
		fmt.Println("No media found.")
		return nil
	}
	printMedia(report.Media)
	return nil
}

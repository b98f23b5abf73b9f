package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var (
		action string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				entries, err := d.AuditHandler.Handle(cmd.Context(), action, limit)
				if err != nil {
					return err
				}
				if format == "json" {
					return printJSON(entries)
				}
				if len(entries) == 0 {
					fmt.Println("No audit entries.")
					return nil
				}
				for _, e := range entries {
					fmt.Printf("%s  %-18s %-12s %s\n",
						e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.Subject, formatDetails(e.Details))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Only show this action (e.g. person.add)")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultAuditLimit, "Maximum entries to show")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")

	return cmd
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, details[k])
	}
	return strings.Join(parts, " ")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage family trees",
		RunE:  runTreesList,
	}

	cmd.AddCommand(
		newTreesListCmd(),
		newTreesCreateCmd(),
		newTreesDeleteCmd(),
	)

	return cmd
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all trees",
		RunE:  runTreesList,
	}
}

func runTreesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := newTreesHandler().HandleList(cwd)
	if err != nil {
		return err
	}

	if len(trees) == 0 {
		fmt.Println("No trees configured.")
		fmt.Println("Use 'lineage trees create NAME' to create a tree.")
		return nil
	}

	fmt.Printf("%-20s %-12s %s\n", "NAME", "CREATED", "DESCRIPTION")
	fmt.Printf("%-20s %-12s %s\n", "----", "-------", "-----------")

	for _, tree := range trees {
		fmt.Printf("%-20s %-12s %s\n", tree.Name, tree.CreatedAt.Format("2006-01-02"), tree.Description)
	}

	return nil
}

func newTreesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			tree, err := newTreesHandler().HandleCreate(cmd.Context(), cwd, args[0], description)
			if err != nil {
				return err
			}

			fmt.Printf("Created tree %q at %s\n", tree.Name, tree.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tree description")

	return cmd
}

func newTreesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a tree and its database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			if err := newTreesHandler().HandleDelete(cwd, args[0]); err != nil {
				return err
			}

			fmt.Printf("Deleted tree %q\n", args[0])
			return nil
		},
	}
}

// Package main provides the entry point for the lineage CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/domain/ports"
)

var (
	version           = "0.1.0-dev"
	globalTree        string
	globalMetricsFile string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lineage",
		Short:         "A genealogy archive with family and media queries",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalTree, "tree", "t", "", "Family tree to operate on (default \"default\")")
	rootCmd.PersistentFlags().StringVar(&globalMetricsFile, "metrics-file", "", "Write query metrics to this prometheus textfile")

	rootCmd.AddCommand(
		newInitCmd(),
		newTreesCmd(),
		newPersonCmd(),
		newMediaCmd(),
		newReportCmd(),
		newImportCmd(),
		newAuditCmd(),
	)

	return rootCmd
}

// exitCode maps an error kind to the process exit status.
func exitCode(err error) int {
	switch ports.KindOf(err) {
	case ports.KindInvalidArgument:
		return 2
	case ports.KindAmbiguousMatch:
		return 3
	case ports.KindNotFound:
		return 4
	case ports.KindDataIntegrity:
		return 5
	case ports.KindCollaboratorUnavailable:
		return 6
	default:
		return 1
	}
}

// Package cli implements the batchkit command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/batchkit/version"
)

// NewRootCmd builds the batchkit command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "batchkit",
		Short:         "Parallel batch pipeline toolkit",
		Long:          "batchkit splits a data set into batches, transforms them on a bounded worker pool and streams the results.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newRunCmd(), newVersionCmd())
	return cmd
}

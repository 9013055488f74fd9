// Command batchkit runs a synthetic workload through a batch pipeline.
package main

import (
	"os"

	"github.com/kbukum/batchkit/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

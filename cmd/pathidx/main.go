// Command pathidx scans a directory into a store-backed path index and
// reports how its size compares with a flat list of paths and digests.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pathidx [command] (flags)",
		Short:        "path index builder and inspector",
		SilenceUsage: true,
	}
	root.AddCommand(newScanCmd())
	return root
}

func main() {
	cobra.EnableCommandSorting = false
	if err := newRootCmd().Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set by the release build with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerdash",
		Short: "Ledger dashboard server",
		Long: `ledgerdash serves the built dashboard client and the JSON chart data
read from a token-transfer ledger.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledgerdash", version)
		},
	}
}

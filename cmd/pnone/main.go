package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pnone",
		Short: "Propagate the preserve_none calling convention through Go programs",
		Long: `pnone marks the callers of preserve-none functions as preserve-none and shares
the names of preserve-none functions between builds through a function list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.AddCommand(buildCmd, listCmd, envCmd, targetsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pnone:", err)
		os.Exit(1)
	}
}

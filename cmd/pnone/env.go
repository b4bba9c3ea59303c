package main

import (
	"github.com/spf13/cobra"

	"omibyte.io/preservenone/builder"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print pnone environment information",
	Run: func(cmd *cobra.Command, args []string) {
		builder.Environment().Print(cmd.OutOrStdout())
	},
}

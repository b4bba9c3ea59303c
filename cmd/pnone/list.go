package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/preservenone/compiler/attrlist"
)

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "Print the names recorded in a function list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := attrlist.Load(args[0])
		if err != nil {
			return err
		}

		for _, name := range names.Sorted() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

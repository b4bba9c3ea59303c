package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/preservenone/targets"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Print the known targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ARCH\tTRIPLE\tPRESERVE_NONE")
		for _, name := range targets.All().Names() {
			target, err := targets.All().Find(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%v\n", target.Architecture, target.Triple, target.PreserveNone)
		}
		return w.Flush()
	},
}

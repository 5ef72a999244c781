package main

import (
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [path...]",
	Short: "Read the deck into the schema's memory",
	Long: `Reads each path (a table, or a field inside one) from the deck and prints
a report of assigned fields and conversion errors. Without arguments every
table the deck defines is read. Exits with status 1 on any field error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		return p.Read(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}

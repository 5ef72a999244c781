package main

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <table>",
	Short: "Read a table, write it back to the deck and save a snapshot",
	Long: `Reads a table, writes it back to the deck runtime as a global and saves the
snapshot. Snapshots go to Redis when --redis is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		return p.Publish(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

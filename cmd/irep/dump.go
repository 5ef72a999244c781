package main

import (
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <table>",
	Short: "Read a table and print it back from memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		return p.Dump(cmd.OutOrStdout(), args[0], format)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("format", "f", "yaml", "Output format: 'yaml' or 'json'")
}

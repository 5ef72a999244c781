package main

import (
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "List the fields the deck leaves undefined",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		return p.Lint(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

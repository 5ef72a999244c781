package main

import (
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <callback> [arg...]",
	Short: "Evaluate a callback field with numeric arguments",
	Example: `  irep eval -d input.lua table1.f1 1 2 3
  irep eval -d input.lua 'table1.table2[0].f2' 0.5 1 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		return p.Eval(cmd.OutOrStdout(), args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Report whether the deck defines a value at path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		fmt.Fprintln(cmd.OutOrStdout(), p.Binder.Exists(args[0]))
		return nil
	},
}

var lenCmd = &cobra.Command{
	Use:   "len <path>",
	Short: "Print the runtime length at path (-1 absent, 0 scalar)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		fmt.Fprintln(cmd.OutOrStdout(), p.Binder.RuntimeLength(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(lenCmd)
}

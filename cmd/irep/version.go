package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/irep"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of irep",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "irep version %s\n", strings.TrimSpace(irep.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/irep/internal/cli"
	"github.com/aretw0/irep/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the schema",
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the schema for consistency",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schemaPath(cmd, args)
		compiled, err := cli.LoadSchema(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema is valid: %d tables, %d structs.\n",
			compiled.Index.Len(), len(compiled.Structs))
		return nil
	},
}

var schemaDocCmd = &cobra.Command{
	Use:   "doc [file]",
	Short: "Print the schema as documentation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var render func(string) (string, error)
		if tui.IsTerminal(os.Stdout) {
			render = tui.NewRenderer()
		}
		return cli.SchemaDoc(cmd.OutOrStdout(), schemaPath(cmd, args), render)
	},
}

var schemaGraphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Print the schema as a Mermaid flowchart",
	Long:  `Prints the tables and structs of the schema as a Mermaid flowchart. With --deck, tables the deck defines are highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _ := cmd.Flags().GetString("deck")
		if deck == "" || len(args) > 0 {
			return cli.SchemaGraph(cmd.OutOrStdout(), schemaPath(cmd, args))
		}

		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()
		return p.Graph(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaValidateCmd)
	schemaCmd.AddCommand(schemaDocCmd)
	schemaCmd.AddCommand(schemaGraphCmd)
}

func schemaPath(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	path, _ := cmd.Flags().GetString("schema")
	return path
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/internal/cli"
	"github.com/aretw0/irep/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// envSnapshotKey holds a hex AES-256 key that encrypts snapshots at rest.
const envSnapshotKey = "IREP_SNAPSHOT_KEY"

var rootCmd = &cobra.Command{
	Use:   "irep",
	Short: "irep binds script input decks to native data layouts",
	Long: `irep reads input decks written in Lua, YAML or JSON into the memory laid out
by a schema, reporting every field it could not convert, and writes that memory
back as tables.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), irep.Version)
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("schema", "s", "schema.yaml", "Schema describing the tables")
	rootCmd.PersistentFlags().StringP("deck", "d", "", "Input deck (.lua, .yaml or .json)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for snapshots (default: in memory)")
	rootCmd.PersistentFlags().StringSlice("redact", nil, "Mask snapshot fields matching these patterns")
	rootCmd.PersistentFlags().String("log-level", "", "Log to stderr at this level")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every assigned field")
	rootCmd.PersistentFlags().Int("max-depth", 0, "Maximum table nesting during a read (default 64)")
}

// openProject opens the schema and deck named by the persistent flags.
func openProject(cmd *cobra.Command) (*cli.Project, error) {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.SchemaPath, _ = flags.GetString("schema")
	opts.DeckPath, _ = flags.GetString("deck")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.Redact, _ = flags.GetStringSlice("redact")
	opts.SnapshotKey = os.Getenv(envSnapshotKey)
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Debug, _ = flags.GetBool("debug")
	opts.Trace, _ = flags.GetBool("trace")
	opts.MaxDepth, _ = flags.GetInt("max-depth")
	return cli.Open(opts)
}

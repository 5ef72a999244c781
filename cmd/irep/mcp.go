package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/irep/internal/cli"
	"github.com/aretw0/irep/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the opened schema and deck as MCP tools and resources, so agents can
read tables, inspect snapshots and probe the deck.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// 1. Open the project
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		// 2. Initialize MCP Server Adapter
		srv := mcp.NewServer(p.Binder)

		// 3. Start Server based on Transport
		switch transport {
		case "stdio":
			// Keep stdout for JSON-RPC
			log.SetOutput(os.Stderr)
			p.Logger.Info("starting MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			p.Logger.Info("starting MCP server", "transport", transport, "port", port)

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			p.Logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}

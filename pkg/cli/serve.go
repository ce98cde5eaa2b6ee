package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentmatrix-dev/agentmatrix/internal/registry"
)

var (
	serveHTTPAddr string
	serveMCPAddr  string
	serveNoMCP    bool
	serveNoSim    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("http-addr") {
			cfg.HTTPAddr = serveHTTPAddr
		}
		if flags.Changed("mcp-addr") {
			cfg.MCPAddr = serveMCPAddr
		}
		if serveNoMCP {
			cfg.MCPEnabled = false
		}
		if serveNoSim {
			cfg.SimulatorEnabled = false
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return registry.App(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "HTTP API listen address")
	serveCmd.Flags().StringVar(&serveMCPAddr, "mcp-addr", "", "MCP server listen address")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "Do not start the MCP server")
	serveCmd.Flags().BoolVar(&serveNoSim, "no-simulator", false, "Do not simulate usage telemetry")
}

package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve posts to MCP clients",
	Long: `Serve posts to assistants over the Model Context Protocol.

Without --port the server speaks JSON-RPC on stdin and stdout, which is what
desktop assistants expect when they launch folio themselves:

  {"mcpServers": {"folio": {"command": "folio", "args": ["mcp", "serve"]}}}

With --port it serves streamable HTTP on localhost instead.`,
	Example: `  folio mcp serve
  folio mcp serve --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Content: contentService,
		Version: versionService,
	})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort("localhost", strconv.Itoa(mcpPort))
	// Stdout is free in HTTP mode.
	fmt.Fprintf(cmd.OutOrStdout(), "MCP listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose prepkit to MCP clients",
	Long: `Serve the career tools to an MCP client such as an AI assistant.

Tools:     chat, roadmap, analyze_skills, analyze_ats, experiences, index_status
Resources: prepkit://status, prepkit://prompts, prepkit://prompts/{name}

Without --port the server speaks JSON-RPC over stdio, which is what desktop
assistants launch. With --port it serves the streamable HTTP transport.

Examples:
  prepkit mcp serve
  prepkit mcp serve --port 8765 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "localhost", "HTTP bind host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	server, err := mcp.NewServer(&mcp.Ports{
		Career:  careerService,
		Engine:  engineService,
		Prompts: promptService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	warmEngine(cmd.Context())

	if port <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

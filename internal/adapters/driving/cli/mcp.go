package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/labelrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port to
serve streamable HTTP instead.

Tools:
  find_and_retrieve  product_name, question, active_ingredient (optional)
  list_documents     product (optional)

Resources:
  labelrag://documents
  labelrag://documents/{documentId}

Examples:
  labelrag mcp serve
  labelrag mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Label:    labelService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	if watchConfig != nil {
		watchConfig(ctx)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

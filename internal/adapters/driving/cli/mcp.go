package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask the
bookstore assistant and edit carts.

Tools:
  ask           send a message through the chat pipeline
  cart          show, total, clear, add or remove cart items
  index_status  number of indexed chunks

Resources:
  bookbot://carts/{session}   cart contents as JSON

By default the server communicates over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  bookbot mcp serve
  bookbot mcp serve --port 8080`,
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
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:  chatService,
		Cart:  cartService,
		Index: indexService,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for bookbot resources.
const uriScheme = "bookbot://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "carts/{session}",
		Name:        "cart",
		Description: "Books in a session's shopping cart",
		MIMEType:    "application/json",
	}, s.handleCartResource)
}

// handleCartResource returns the items of one cart as JSON.
func (s *Server) handleCartResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	session := extractSession(req.Params.URI)
	if session == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	cart, err := s.ports.Cart.Items(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}

	data, err := json.MarshalIndent(toCartItems(cart), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cart: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSession extracts the session from bookbot://carts/{session}.
func extractSession(uri string) string {
	const prefix = uriScheme + "carts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	session := strings.TrimPrefix(uri, prefix)
	if strings.Contains(session, "/") {
		return ""
	}
	return session
}

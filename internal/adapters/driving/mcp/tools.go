package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query   string `json:"query" jsonschema:"the customer's message in Turkish"`
	Session string `json:"session,omitempty" jsonschema:"cart session identifier, empty for the default cart"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Book     string `json:"book,omitempty"`
}

// CartInput is the input schema for the cart tool.
type CartInput struct {
	Action  string `json:"action" jsonschema:"one of show, total, clear, add, remove"`
	Book    string `json:"book,omitempty" jsonschema:"book title or fragment for add and remove"`
	Session string `json:"session,omitempty" jsonschema:"cart session identifier, empty for the default cart"`
}

// CartOutput is the output schema for the cart tool.
type CartOutput struct {
	Response string     `json:"response"`
	Items    []CartItem `json:"items"`
	Total    float64    `json:"total"`
}

// CartItem is one book in a cart.
type CartItem struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Price  float64 `json:"price"`
}

// IndexStatusOutput is the output schema for the index_status tool.
type IndexStatusOutput struct {
	Chunks int `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the bookstore assistant about books, authors, genres, prices and stock, or give a cart command",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cart",
		Description: "Show, total, clear, add to or remove from a shopping cart",
	}, s.handleCart)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_status",
			Description: "Report how many catalog chunks are indexed",
		}, s.handleIndexStatus)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	reply, err := s.ports.Chat.Ask(ctx, input.Session, input.Query)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Response: reply.Text,
		Intent:   reply.Intent.String(),
		Book:     reply.Argument,
	}, nil
}

func (s *Server) handleCart(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CartInput,
) (*mcp.CallToolResult, CartOutput, error) {
	session := domain.NormaliseSession(input.Session)

	var (
		response string
		err      error
	)
	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case "show":
		response, err = s.ports.Cart.Show(ctx, session)
	case "total":
		response, err = s.ports.Cart.Total(ctx, session)
	case "clear":
		response, err = s.ports.Cart.Clear(ctx, session)
	case "add":
		response, err = s.ports.Cart.Add(ctx, session, input.Book)
	case "remove":
		response, err = s.ports.Cart.Remove(ctx, session, input.Book)
	default:
		return nil, CartOutput{}, fmt.Errorf("%w: %q", errUnknownAction, input.Action)
	}
	if err != nil {
		return nil, CartOutput{}, err
	}

	cart, err := s.ports.Cart.Items(ctx, session)
	if err != nil {
		return nil, CartOutput{}, fmt.Errorf("reading cart: %w", err)
	}

	return nil, CartOutput{
		Response: response,
		Items:    toCartItems(cart),
		Total:    cart.Total(),
	}, nil
}

func (s *Server) handleIndexStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	n, err := s.ports.Index.Count(ctx)
	if err != nil {
		return nil, IndexStatusOutput{}, err
	}
	return nil, IndexStatusOutput{Chunks: n}, nil
}

func toCartItems(cart domain.Cart) []CartItem {
	items := make([]CartItem, len(cart))
	for i, item := range cart {
		items[i] = CartItem{
			Title:  item.Title,
			Author: item.Author,
			Genre:  item.Genre,
			Price:  item.Price,
		}
	}
	return items
}

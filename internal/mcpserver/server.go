// Package mcpserver exposes the division store to agents over MCP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentic-research/divtree/internal/tree"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Entry is one child division as returned to the agent.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subtype     string `json:"subtype,omitempty"`
	Label       string `json:"label"`
	HasChildren bool   `json:"has_children"`
}

// ListChildren returns the children of id (roots when id is empty), sorted
// the same way the tree view sorts them.
func ListChildren(src tree.Source, id string) ([]Entry, error) {
	divs, err := src.ChildrenOf(id)
	if err != nil {
		return nil, err
	}
	tree.SortByName(divs)
	out := make([]Entry, 0, len(divs))
	for _, d := range divs {
		out = append(out, Entry{
			ID:          d.ID,
			Name:        d.Name(),
			Subtype:     d.Subtype,
			Label:       d.Label(),
			HasChildren: d.HasChildren,
		})
	}
	return out, nil
}

// New builds an MCP server with the list_children tool bound to src.
func New(src tree.Source, version string) *server.MCPServer {
	s := server.NewMCPServer("divtree", version, server.WithToolCapabilities(false))
	s.AddTool(listChildrenTool(), Handler(src))
	return s
}

func listChildrenTool() mcp.Tool {
	return mcp.NewTool("list_children",
		mcp.WithDescription("List the administrative divisions directly under a division. "+
			"Omit id to list the root divisions. Each entry says whether it has children of its own."),
		mcp.WithString("id", mcp.Description("Division id; empty for roots")),
	)
}

// Handler serves list_children calls.
func Handler(src tree.Source) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		entries, err := ListChildren(src, id)
		if err != nil {
			return mcp.NewToolResultErrorFromErr(fmt.Sprintf("list children of %q", id), err), nil
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode entries: %w", err)
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	service   *Service
}

// NewServer creates a new Reminder MCP server backed by the given service.
func NewServer(service *Service) *Server {
	s := &Server{
		service: service,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Schedule a reminder. Times use the compact form [<n>Y][<n>M][<n>D][<n>h][<n>m][<n>s]."),
			mcp.WithString("message", mcp.Required(), mcp.Description("Text to show when the reminder fires")),
			mcp.WithString("when", mcp.Description("Absolute time; unspecified fields keep the current value (e.g. 13h2m)")),
			mcp.WithString("after", mcp.Description("Relative offset from now (e.g. 1D2h). Ignored when 'when' is set")),
			mcp.WithNumber("repeat", mcp.Description("How many times to show the message (default from config)")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List pending reminders ordered by due time"),
		),
		s.handleList(Pending),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_history",
			mcp.WithDescription("List reminders that have already fired"),
		),
		s.handleList(History),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder by ID"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("collection", mcp.Description("pending (default) or history")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clean_reminders",
			mcp.WithDescription("Purge stale pending reminders and clear the history"),
		),
		s.handleClean,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sub := Submission{
		Message: req.GetString("message", ""),
		When:    req.GetString("when", ""),
		After:   req.GetString("after", ""),
		Repeat:  int(req.GetFloat("repeat", 0)),
	}

	added, err := s.service.Submit(ctx, sub)
	if err != nil {
		if errors.Is(err, ErrMissingMessage) {
			return mcp.NewToolResultError("message is required"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(added)
}

func (s *Server) handleList(c Collection) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := s.service.Store().List(ctx, c)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list %s: %v", c, err)), nil
		}

		if len(entries) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No %s reminders.", c)), nil
		}

		return jsonResult(entries)
	}
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}
	id := int64(idFloat)

	c := Pending
	if req.GetString("collection", "") == "history" {
		c = History
	}

	if err := s.service.Store().Delete(ctx, c, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted from %s.", id, c)), nil
}

func (s *Server) handleClean(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.service.Clean(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clean reminders: %v", err)), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

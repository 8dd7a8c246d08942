// Package server exposes the agent's operations as MCP tools.
//
// Three tools are registered (discover-servers, add-mcp-server and
// list-servers) together with the smart-mcp-agent prompt carrying the
// agent instructions. Results are returned as JSON text content. Operation
// failures become tool errors so the calling model can read them.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// Transports accepted by Serve.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// DefaultEndpointPath is where the streamable HTTP transport listens.
const DefaultEndpointPath = "/mcp"

// Server wraps an MCP server bound to an Agent.
type Server struct {
	agent  *agent.Agent
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New creates the MCP server and registers the agent's tools and prompt.
func New(a *agent.Agent, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		agent:  a,
		logger: logger,
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(false),
			server.WithPromptCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions(agent.Instructions()),
		),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	discover := mcp.NewTool(agent.ToolDiscover,
		mcp.WithDescription(agent.DiscoverDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms, e.g. \"web search\" or \"finance\""),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of servers to return (default 10)"),
			mcp.Min(1),
			mcp.Max(registry.MaxLimit),
		),
	)
	s.mcp.AddTool(discover, s.handleDiscover)

	add := mcp.NewTool(agent.ToolAdd,
		mcp.WithDescription(agent.AddDescription),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Simple server name; converted to a lowercase identifier"),
		),
		mcp.WithString("serverId",
			mcp.Required(),
			mcp.Description("Full Smithery server ID, e.g. \"@Aas-ee/open-websearch\""),
		),
		mcp.WithString("description",
			mcp.Description("Optional description"),
		),
	)
	s.mcp.AddTool(add, s.handleAdd)

	list := mcp.NewTool(agent.ToolList,
		mcp.WithDescription(agent.ListDescription),
	)
	s.mcp.AddTool(list, s.handleList)
}

func (s *Server) registerPrompts() {
	prompt := mcp.NewPrompt(agent.PromptName,
		mcp.WithPromptDescription("System instructions for the "+agent.Name),
	)
	s.mcp.AddPrompt(prompt, func(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(
			agent.Name,
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(agent.Instructions())),
			},
		), nil
	})
}

func (s *Server) handleDiscover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.NewContext(ctx, s.logger)

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := agent.DiscoverInput{Query: query}
	if _, ok := request.GetArguments()["limit"]; ok {
		limit := request.GetInt("limit", 0)
		in.Limit = &limit
	}

	out, err := s.agent.Discover(ctx, in)
	return s.result(agent.ToolDiscover, out, err)
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.NewContext(ctx, s.logger)

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	serverID, err := request.RequireString("serverId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.agent.Add(ctx, agent.AddInput{
		Name:        name,
		ServerID:    serverID,
		Description: request.GetString("description", ""),
	})
	return s.result(agent.ToolAdd, out, err)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.NewContext(ctx, s.logger)

	out, err := s.agent.List(ctx)
	return s.result(agent.ToolList, out, err)
}

// result encodes out as JSON text, or err as a tool error.
func (s *Server) result(tool string, out any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		s.logger.Warn("tool call failed", slog.String("tool", tool), slog.String("error", err.Error()))
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s result", tool)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio serves MCP over in and out until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(DefaultEndpointPath))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()
	s.logger.Info("serving MCP over streamable HTTP",
		slog.String("addr", addr),
		slog.String("path", DefaultEndpointPath),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "streamable HTTP server")
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutting down streamable HTTP server")
		}
		return nil
	}
}

// Serve runs the named transport.
func (s *Server) Serve(ctx context.Context, transport, addr string, in io.Reader, out io.Writer) error {
	switch transport {
	case TransportStdio, "":
		return s.ServeStdio(ctx, in, out)
	case TransportStreamableHTTP:
		return s.ServeHTTP(ctx, addr)
	default:
		return errors.Newf("unknown transport %q (want %s or %s)", transport, TransportStdio, TransportStreamableHTTP)
	}
}

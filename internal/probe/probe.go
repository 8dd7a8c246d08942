// Package probe starts a configured stdio MCP server and lists its tools.
package probe

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
)

// DefaultTimeout bounds the handshake and the tools/list call together.
const DefaultTimeout = 60 * time.Second

// ProtocolVersion is the MCP protocol version announced during initialize.
const ProtocolVersion = "2024-11-05"

// ErrNoCommand indicates the entry has no command to launch.
var ErrNoCommand = errors.New("entry has no command")

// Session is the subset of an MCP client the prober drives.
type Session interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	Close() error
}

// Dialer starts command with env and args and returns a connected session.
type Dialer func(command string, env []string, args ...string) (Session, error)

// StdioDialer launches the server as a child process speaking MCP on stdio.
func StdioDialer(command string, env []string, args ...string) (Session, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Prober lists the tools a configured server exposes.
type Prober struct {
	dial    Dialer
	timeout time.Duration
	name    string
	version string
}

// Option configures a Prober.
type Option func(*Prober)

// WithDialer replaces the stdio dialer.
func WithDialer(d Dialer) Option {
	return func(p *Prober) {
		p.dial = d
	}
}

// WithTimeout sets the overall probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClientInfo sets the client name and version sent during initialize.
func WithClientInfo(name, version string) Option {
	return func(p *Prober) {
		p.name = name
		p.version = version
	}
}

// New returns a Prober that launches servers over stdio.
func New(opts ...Option) *Prober {
	p := &Prober{
		dial:    StdioDialer,
		timeout: DefaultTimeout,
		name:    "smartmcp",
		version: "dev",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tools launches e, performs the MCP handshake and returns the server's
// tools sorted by name. The child process is always shut down.
func (p *Prober) Tools(ctx context.Context, e mcpconfig.Entry) ([]mcp.Tool, error) {
	if e.Command == "" {
		return nil, errors.Wrapf(ErrNoCommand, "probing %s", e.Key)
	}

	logger := logging.FromContext(ctx).With("server", e.Key)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logger.Debug("starting server", "command", e.Command, "args", e.Args)
	session, err := p.dial(e.Command, os.Environ(), e.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "starting %s", e.Key)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Debug("closing server", "error", cerr)
		}
	}()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = ProtocolVersion
	req.Params.ClientInfo = mcp.Implementation{
		Name:    p.name,
		Version: p.version,
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	info, err := session.Initialize(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "initializing %s", e.Key)
	}
	logger.Debug("server initialized",
		"name", info.ServerInfo.Name,
		"version", info.ServerInfo.Version,
		"protocol", info.ProtocolVersion,
	)

	result, err := session.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, errors.Wrapf(err, "listing tools of %s", e.Key)
	}

	tools := append([]mcp.Tool(nil), result.Tools...)
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	logger.Info("probed server", "tools", len(tools))
	return tools, nil
}

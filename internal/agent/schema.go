package agent

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// Tool names exposed to callers.
const (
	ToolDiscover = "discover-servers"
	ToolAdd      = "add-mcp-server"
	ToolList     = "list-servers"
)

// Tool descriptions exposed to callers.
const (
	DiscoverDescription = "Search for MCP servers on Smithery"
	AddDescription      = "Add an MCP server by dynamically modifying the mcp.ts file configuration"
	ListDescription     = "List all MCP servers currently configured in the mcp.ts file"
)

// StatusOK is the only status an AddOutput carries.
const StatusOK = "ok"

// DiscoverInput is the input of the discover operation.
type DiscoverInput struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

// DiscoverOutput is the result of the discover operation.
type DiscoverOutput struct {
	Servers     []registry.Server     `json:"servers"`
	Unavailable *registry.Unavailable `json:"unavailable,omitempty"`
}

// AddInput is the input of the add operation.
type AddInput struct {
	Name        string `json:"name"`
	ServerID    string `json:"serverId"`
	Description string `json:"description,omitempty"`
}

// AddOutput is the result of the add operation.
type AddOutput struct {
	Status   string `json:"status"`
	Name     string `json:"name"`
	ServerID string `json:"serverId"`
	Key      string `json:"key"`
	Replaced bool   `json:"replaced,omitempty"`
	Message  string `json:"message"`
}

// ListedServer is one entry of a ListOutput.
type ListedServer struct {
	Name     string `json:"name"`
	ServerID string `json:"serverId,omitempty"`
	Type     string `json:"type"`
}

// ListOutput is the result of the list operation.
type ListOutput struct {
	Servers []ListedServer `json:"servers"`
	Message string         `json:"message"`
}

// SchemaError reports a tool input or output that does not match its
// declared shape. It matches errors.ErrSchema.
type SchemaError struct {
	Tool    string
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Tool, e.Field, e.Message)
}

// Is reports whether target is errors.ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == errors.ErrSchema
}

// ValidateDiscoverInput checks the limit range.
func ValidateDiscoverInput(in DiscoverInput) error {
	if in.Limit != nil && (*in.Limit < 1 || *in.Limit > registry.MaxLimit) {
		return &SchemaError{Tool: ToolDiscover, Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", registry.MaxLimit)}
	}
	return nil
}

// ValidateDiscoverOutput checks that a server list is present.
func ValidateDiscoverOutput(out DiscoverOutput) error {
	if out.Servers == nil {
		return &SchemaError{Tool: ToolDiscover, Field: "servers", Message: "is required"}
	}
	return nil
}

// ValidateAddInput checks that name and serverId are present and can be
// written into an entry that parses back.
func ValidateAddInput(in AddInput) error {
	if in.Name == "" {
		return &SchemaError{Tool: ToolAdd, Field: "name", Message: "must not be empty"}
	}
	if mcpconfig.DeriveKey(in.Name) == "" {
		return &SchemaError{Tool: ToolAdd, Field: "name", Message: "must contain at least one letter or digit"}
	}
	if in.ServerID == "" {
		return &SchemaError{Tool: ToolAdd, Field: "serverId", Message: "must not be empty"}
	}
	if strings.ContainsAny(in.ServerID, "'\"\\[]\n\r") {
		return &SchemaError{Tool: ToolAdd, Field: "serverId", Message: "must not contain quotes, brackets, backslashes or newlines"}
	}
	return nil
}

// ValidateAddOutput checks the fixed shape of an add result.
func ValidateAddOutput(out AddOutput) error {
	switch {
	case out.Status != StatusOK:
		return &SchemaError{Tool: ToolAdd, Field: "status", Message: fmt.Sprintf("must be %q", StatusOK)}
	case out.Name == "":
		return &SchemaError{Tool: ToolAdd, Field: "name", Message: "is required"}
	case out.ServerID == "":
		return &SchemaError{Tool: ToolAdd, Field: "serverId", Message: "is required"}
	case out.Message == "":
		return &SchemaError{Tool: ToolAdd, Field: "message", Message: "is required"}
	}
	return nil
}

// ValidateListOutput checks every listed server and the message.
func ValidateListOutput(out ListOutput) error {
	if out.Servers == nil {
		return &SchemaError{Tool: ToolList, Field: "servers", Message: "is required"}
	}
	for i, s := range out.Servers {
		if s.Name == "" {
			return &SchemaError{Tool: ToolList, Field: fmt.Sprintf("servers[%d].name", i), Message: "is required"}
		}
		if s.Type == "" {
			return &SchemaError{Tool: ToolList, Field: fmt.Sprintf("servers[%d].type", i), Message: "is required"}
		}
	}
	if out.Message == "" {
		return &SchemaError{Tool: ToolList, Field: "message", Message: "is required"}
	}
	return nil
}

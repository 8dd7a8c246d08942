package agent

import (
	"fmt"
	"path/filepath"
	"strings"
)

func addMessage(in AddInput, key, path string, replaced bool) string {
	file := filepath.Base(path)
	verb := "added"
	if replaced {
		verb = "updated"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully %s %s to %s configuration!\n\n", verb, in.ServerID, file)
	fmt.Fprintf(&b, "The server %q has been %s in the MCP client configuration in %s.\n\n", in.Name, verb, path)
	b.WriteString("Server configuration:\n")
	fmt.Fprintf(&b, "- Name: %s (key: %s)\n", in.Name, key)
	fmt.Fprintf(&b, "- Server ID: %s\n", in.ServerID)
	if in.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", in.Description)
	}
	b.WriteString("- Method: Smithery CLI over stdio\n\n")
	b.WriteString("Server Restart Notice: the host will restart to load the new MCP server. ")
	b.WriteString("You may see a brief connection interruption while it restarts. ")
	b.WriteString("Once the restart completes the new server is available.\n\n")
	b.WriteString("Next Steps:\n")
	b.WriteString("- Wait for the restart to complete (usually 10-15 seconds)\n")
	fmt.Fprintf(&b, "- Use %q to verify the server was added\n", ToolList)
	b.WriteString("- The new server's tools will be available for the agent to use")
	return b.String()
}

func listMessage(servers []ListedServer, file string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d MCP servers configured in %s:\n\n", len(servers), file)
	for _, s := range servers {
		fmt.Fprintf(&b, "- %s (%s)", s.Name, s.Type)
		if s.ServerID != "" {
			fmt.Fprintf(&b, " - %s", s.ServerID)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nThese servers are permanently configured and will persist across restarts.")
	return b.String()
}

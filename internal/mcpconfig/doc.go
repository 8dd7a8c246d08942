// Package mcpconfig reads and patches the servers block of a TypeScript
// MCP configuration file.
//
// The file is expected to declare exactly one block of the form
//
//	const servers: Record<string, any> = {
//	    geeknews: {
//	      command: 'npx',
//	      args: ['-y', '@smithery/cli@latest', 'run', '@the0807/geeknews-mcp-server', '--config', '{}'],
//	    },
//	};
//
// [ExtractBlock] locates the block, [ParseEntries] scans it for entries of
// the fixed npx shape, and [ComposeEntry] renders a new entry that
// [AppendEntry] splices in. Entries of any other shape are ignored.
// Nothing here parses TypeScript; the patterns are the whole contract.
package mcpconfig

// Package config provides configuration management for the smartmcp CLI.
//
// The configuration file is config.yaml, searched in the current directory
// and then in $XDG_CONFIG_HOME/smartmcp. Every key can be overridden with a
// SMARTMCP_ environment variable, with dots replaced by underscores:
//
//	version: 1
//	project_root: /work/agent      # optional, detected from cwd otherwise
//	source_file: src/mastra/mcp.ts
//	store:
//	  backend: source              # source | yaml | toml
//	  duplicates: append           # append | reject | overwrite
//	registry:
//	  base_url: https://registry.smithery.ai
//	  timeout: 30s
//	  default_limit: 10
//	backup:
//	  enabled: true
//	  retention: 5
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Loaded configurations are validated automatically. [Validate] can also be
// called directly and returns every problem found.
package config

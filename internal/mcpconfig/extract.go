package mcpconfig

import (
	"regexp"
	"strings"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// BlockHeader opens the servers block.
const BlockHeader = "const servers: Record<string, any> = {"

// BlockTrailer closes the servers block.
const BlockTrailer = "};"

// Package markers used by Classify.
const (
	SmitheryMarker   = "@smithery/cli"
	FilesystemMarker = "@modelcontextprotocol/server-filesystem"
)

// Type classifies a configured server entry.
type Type string

// Entry types reported by Classify.
const (
	TypeSmithery   Type = "smithery"
	TypeFilesystem Type = "filesystem"
	TypeUnknown    Type = "unknown"
)

var (
	blockPattern = regexp.MustCompile(`const servers: Record<string, any> = \{([\s\S]*?)\};`)
	entryPattern = regexp.MustCompile(`(\w+):\s*\{\s*command:\s*['"]npx['"],\s*args:\s*\[([^\]]+)\]`)
)

// Block is the servers block located in a document.
type Block struct {
	// Inner is the text between the opening brace and the closing "};".
	Inner string

	// Start and End are the byte offsets of the whole match in the document.
	Start int
	End   int

	// InnerStart is the byte offset of Inner in the document.
	InnerStart int
}

// Entries parses the entries inside the block. Their positions refer to
// the document the block was extracted from.
func (b Block) Entries() []Entry {
	entries := ParseEntries(b.Inner)
	for i := range entries {
		entries[i].argsStart += b.InnerStart
		entries[i].argsEnd += b.InnerStart
	}
	return entries
}

// Entry is a server entry recovered from the servers block.
type Entry struct {
	Key         string   `json:"name" yaml:"name" toml:"name"`
	Command     string   `json:"command" yaml:"command" toml:"command"`
	Args        []string `json:"args" yaml:"args" toml:"args"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Type and ServerID are derived by Classify and never persisted.
	Type     Type   `json:"type" yaml:"-" toml:"-"`
	ServerID string `json:"serverId,omitempty" yaml:"-" toml:"-"`

	// argsStart and argsEnd delimit the text inside "[...]" in the source
	// document. Both are zero for entries not read from source text.
	argsStart int
	argsEnd   int
}

// ExtractBlock locates the servers block in doc.
// It returns ErrExtraction when the header or closing marker is missing.
func ExtractBlock(doc string) (Block, error) {
	loc := blockPattern.FindStringSubmatchIndex(doc)
	if loc == nil {
		return Block{}, errors.Wrap(errors.ErrExtraction, "could not find servers configuration")
	}
	return Block{
		Inner:      doc[loc[2]:loc[3]],
		Start:      loc[0],
		End:        loc[1],
		InnerStart: loc[2],
	}, nil
}

// ParseEntries scans doc for entries of the fixed npx shape, in document
// order. Entries of any other shape are omitted.
func ParseEntries(doc string) []Entry {
	matches := entryPattern.FindAllStringSubmatchIndex(doc, -1)
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		raw := doc[m[4]:m[5]]
		args := ParseArgs(raw)
		typ, id := Classify(raw, args)
		entries = append(entries, Entry{
			Key:       doc[m[2]:m[3]],
			Command:   "npx",
			Args:      args,
			Type:      typ,
			ServerID:  id,
			argsStart: m[4],
			argsEnd:   m[5],
		})
	}
	return entries
}

// ParseArgs returns the top-level items of an argument list that are a
// single quoted literal. Other expressions, such as path.join(...), are
// skipped along with any literals nested inside them.
func ParseArgs(raw string) []string {
	var args []string
	for _, item := range splitTopLevel(raw) {
		if lit, ok := unquote(strings.TrimSpace(item)); ok {
			args = append(args, lit)
		}
	}
	return args
}

// splitTopLevel splits raw on commas that are outside quotes and brackets.
func splitTopLevel(raw string) []string {
	var (
		items []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				items = append(items, raw[start:i])
				start = i + 1
			}
		}
	}
	if rest := raw[start:]; strings.TrimSpace(rest) != "" {
		items = append(items, rest)
	}
	return items
}

// unquote reports whether item is exactly one '...' or "..." literal and
// returns its content.
func unquote(item string) (string, bool) {
	if len(item) < 2 {
		return "", false
	}
	q := item[0]
	if q != '\'' && q != '"' || item[len(item)-1] != q {
		return "", false
	}
	body := item[1 : len(item)-1]
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case q:
			return "", false
		}
	}
	return body, true
}

// Classify tags an entry by the package markers in its raw argument text
// and, for smithery entries, extracts the registry server id.
//
// The server id is the literal following "run", or failing that the first
// literal other than the CLI package that contains an "@".
func Classify(raw string, args []string) (Type, string) {
	switch {
	case strings.Contains(raw, SmitheryMarker):
		return TypeSmithery, smitheryServerID(args)
	case strings.Contains(raw, FilesystemMarker):
		return TypeFilesystem, ""
	default:
		return TypeUnknown, ""
	}
}

func smitheryServerID(args []string) string {
	for i, a := range args {
		if a == "run" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			return args[i+1]
		}
	}
	for _, a := range args {
		if strings.HasPrefix(a, SmitheryMarker) {
			continue
		}
		if strings.Contains(a, "@") {
			return a
		}
	}
	return ""
}

// FindEntry returns the first entry with key, in document order.
func FindEntry(entries []Entry, key string) (Entry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

package mcpconfig

import (
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// SmitheryCLI is the runner package every composed entry invokes.
const SmitheryCLI = "@smithery/cli@latest"

var keyStrip = regexp.MustCompile(`[^a-z0-9]`)

// entryTemplate renders one entry in the four-space indented shape used
// inside the servers block. The output has no trailing newline.
var entryTemplate = template.Must(template.New("entry").Funcs(sprig.TxtFuncMap()).Parse(
	"    {{ .Key }}: {\n" +
		"      command: {{ squote .Command }},\n" +
		"      args: [\n" +
		"{{- range .Args }}\n" +
		"        {{ squote . }},\n" +
		"{{- end }}\n" +
		"      ],\n" +
		"    },"))

// DeriveKey converts a display name into a server key: lower-cased with
// every character outside [a-z0-9] removed. The result may be empty.
func DeriveKey(name string) string {
	return keyStrip.ReplaceAllString(strings.ToLower(name), "")
}

// SmitheryArgs returns the npx arguments that run serverID through the
// Smithery CLI with an empty configuration.
func SmitheryArgs(serverID string) []string {
	return []string{"-y", SmitheryCLI, "run", serverID, "--config", "{}"}
}

// NewEntry builds the entry registered for name and serverID.
func NewEntry(name, serverID, description string) Entry {
	args := SmitheryArgs(serverID)
	typ, id := Classify(strings.Join(args, " "), args)
	return Entry{
		Key:         DeriveKey(name),
		Command:     "npx",
		Args:        args,
		Description: description,
		Type:        typ,
		ServerID:    id,
	}
}

// ComposeEntry returns the key and serialized entry text for name and
// serverID. The description is accepted but not embedded in the text.
func ComposeEntry(name, serverID, description string) (string, string, error) {
	e := NewEntry(name, serverID, description)
	text, err := RenderEntry(e)
	if err != nil {
		return "", "", err
	}
	return e.Key, text, nil
}

// RenderEntry serializes e in the servers block entry shape.
func RenderEntry(e Entry) (string, error) {
	var b strings.Builder
	if err := entryTemplate.Execute(&b, e); err != nil {
		return "", errors.Wrap(err, "rendering server entry")
	}
	return b.String(), nil
}

// AppendEntry returns doc with entryText appended to the end of the servers
// block, separated by a newline. doc is returned unchanged with
// ErrExtraction when the block is missing.
func AppendEntry(doc, entryText string) (string, error) {
	block, err := ExtractBlock(doc)
	if err != nil {
		return doc, err
	}
	return doc[:block.Start] + BlockHeader + block.Inner + "\n" + entryText + BlockTrailer + doc[block.End:], nil
}

// ReplaceArgs returns doc with the argument list of e rewritten to args.
// e must come from ParseEntries on the same doc.
func ReplaceArgs(doc string, e Entry, args []string) (string, error) {
	if e.argsEnd <= e.argsStart || e.argsEnd > len(doc) {
		return doc, errors.Newf("entry %q was not parsed from this document", e.Key)
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, a := range args {
		b.WriteString("        '")
		b.WriteString(a)
		b.WriteString("',\n")
	}
	b.WriteString("      ")
	return doc[:e.argsStart] + b.String() + doc[e.argsEnd:], nil
}

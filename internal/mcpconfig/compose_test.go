package mcpconfig

import (
	"strings"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"GeekNews Server", "geeknewsserver"},
		{"AI Daily!", "aidaily"},
		{"open-websearch_v2", "openwebsearchv2"},
		{"already", "already"},
		{"Ünïcode Naïve", "ncodenave"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveKey(tt.name); got != tt.want {
				t.Errorf("DeriveKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestComposeEntry(t *testing.T) {
	key, text, err := ComposeEntry("GeekNews Server", "@the0807/geeknews-mcp-server", "Hacker news for Korea")
	if err != nil {
		t.Fatalf("ComposeEntry() error = %v", err)
	}
	if key != "geeknewsserver" {
		t.Errorf("key = %q, want geeknewsserver", key)
	}

	want := `    geeknewsserver: {
      command: 'npx',
      args: [
        '-y',
        '@smithery/cli@latest',
        'run',
        '@the0807/geeknews-mcp-server',
        '--config',
        '{}',
      ],
    },`
	if text != want {
		t.Errorf("ComposeEntry() text =\n%s\nwant\n%s", text, want)
	}
	if strings.Contains(text, "Hacker news") {
		t.Error("description should not be embedded in entry text")
	}
}

func TestComposeParseRoundTrip(t *testing.T) {
	ids := []string{"@the0807/geeknews-mcp-server", "@PawNzZi/aidaily", "exa", "@smithery-ai/github"}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			key, text, err := ComposeEntry("Some Server "+id, id, "")
			if err != nil {
				t.Fatal(err)
			}
			entries := ParseEntries(text)
			if len(entries) != 1 {
				t.Fatalf("ParseEntries() returned %d entries, want 1", len(entries))
			}
			e := entries[0]
			if e.Key != key || e.Type != TypeSmithery || e.ServerID != id {
				t.Errorf("round trip = (%q, %q, %q), want (%q, smithery, %q)", e.Key, e.Type, e.ServerID, key, id)
			}
		})
	}
}

func TestAppendEntry(t *testing.T) {
	doc := readFixture(t, "mcp.ts")
	before := ParseEntries(doc)

	_, text, err := ComposeEntry("AI Daily", "@PawNzZi/aidaily", "")
	if err != nil {
		t.Fatal(err)
	}
	updated, err := AppendEntry(doc, text)
	if err != nil {
		t.Fatalf("AppendEntry() error = %v", err)
	}

	after := ParseEntries(updated)
	if len(after) != len(before)+1 {
		t.Fatalf("entry count = %d, want %d", len(after), len(before)+1)
	}
	last := after[len(after)-1]
	if last.Key != "aidaily" || last.ServerID != "@PawNzZi/aidaily" {
		t.Errorf("appended entry = %+v", last)
	}

	// Everything outside the block is untouched.
	block, _ := ExtractBlock(doc)
	if !strings.HasPrefix(updated, doc[:block.Start]) || !strings.HasSuffix(updated, doc[block.End:]) {
		t.Error("AppendEntry() changed text outside the servers block")
	}
	if _, err := ExtractBlock(updated); err != nil {
		t.Errorf("updated document lost its block: %v", err)
	}
}

func TestAppendEntry_NotIdempotent(t *testing.T) {
	doc := readFixture(t, "mcp.ts")
	_, text, _ := ComposeEntry("geeknews", "@the0807/geeknews-mcp-server", "")

	once, err := AppendEntry(doc, text)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := AppendEntry(once, text)
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for _, e := range ParseEntries(twice) {
		if e.Key == "geeknews" {
			count++
		}
	}
	// the fixture already holds one geeknews entry
	if count != 3 {
		t.Errorf("geeknews entries = %d, want 3", count)
	}
}

func TestAppendEntry_NoBlock(t *testing.T) {
	doc := readFixture(t, "noblock.ts")
	got, err := AppendEntry(doc, "    x: {},")
	if !errors.Is(err, errors.ErrExtraction) {
		t.Errorf("AppendEntry() error = %v, want ErrExtraction", err)
	}
	if got != doc {
		t.Error("AppendEntry() modified a document without a block")
	}
}

func TestReplaceArgs(t *testing.T) {
	doc := readFixture(t, "mcp.ts")
	e, ok := FindEntry(ParseEntries(doc), "geeknews")
	if !ok {
		t.Fatal("geeknews entry not found")
	}

	updated, err := ReplaceArgs(doc, e, SmitheryArgs("@other/server"))
	if err != nil {
		t.Fatalf("ReplaceArgs() error = %v", err)
	}
	got, _ := FindEntry(ParseEntries(updated), "geeknews")
	if got.ServerID != "@other/server" {
		t.Errorf("ServerID = %q, want @other/server", got.ServerID)
	}
	if len(ParseEntries(updated)) != len(ParseEntries(doc)) {
		t.Error("ReplaceArgs() changed the number of entries")
	}

	if _, err := ReplaceArgs(doc, NewEntry("x", "y", ""), nil); err == nil {
		t.Error("ReplaceArgs() should reject an entry that was not parsed from doc")
	}
}

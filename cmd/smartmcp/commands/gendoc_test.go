package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilePrepender(t *testing.T) {
	got := filePrepender("/tmp/docs/smartmcp_mcp_add.md")
	if !strings.Contains(got, `title: "smartmcp mcp add"`) {
		t.Errorf("filePrepender() = %q", got)
	}
	if !strings.HasPrefix(got, "---\n") {
		t.Error("front matter should open the file")
	}
}

func TestLinkHandler(t *testing.T) {
	if got, want := linkHandler("smartmcp_backup_list.md"), "/docs/reference/smartmcp_backup_list/"; got != want {
		t.Errorf("linkHandler() = %q, want %q", got, want)
	}
}

func TestGenDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reference")
	if err := genDocs(rootCmd, dir, docFormatMarkdown); err != nil {
		t.Fatalf("genDocs() error = %v", err)
	}

	for _, name := range []string{"smartmcp.md", "smartmcp_mcp_discover.md", "smartmcp_backup_restore.md", "smartmcp_serve.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "smartmcp_gen-doc.md")); err == nil {
		t.Error("hidden gen-doc command should not be documented")
	}
}

func TestGenDocs_Man(t *testing.T) {
	dir := t.TempDir()
	if err := genDocs(rootCmd, dir, docFormatMan); err != nil {
		t.Fatalf("genDocs() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "smartmcp-mcp-discover.1"))
	if err != nil {
		t.Fatalf("missing man page: %v", err)
	}
	page := string(data)
	if !strings.Contains(page, ".TH") || !strings.Contains(page, "SMARTMCP") {
		t.Errorf("man page lacks the title header: %q", strings.SplitN(page, "\n", 3)[:2])
	}
	if _, err := os.Stat(filepath.Join(dir, "smartmcp-gen-doc.1")); err == nil {
		t.Error("hidden gen-doc command should not get a man page")
	}
}

func TestGenDocs_UnknownFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := genDocs(rootCmd, dir, "html"); err == nil {
		t.Fatal("genDocs() should reject an unknown format")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("no directory should be created for an unknown format")
	}
}

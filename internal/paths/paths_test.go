package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	if err != nil {
		t.Skipf("home directory unavailable: %v", err)
	}
	want, _ := os.UserHomeDir()
	if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestXDGDirs(t *testing.T) {
	dirs := map[string]string{
		"ConfigDir":       ConfigDir(),
		"BackupDir":       BackupDir(),
		"MemoryFile":      MemoryFile(),
		"LockDir":         LockDir(),
		"ReplHistoryFile": ReplHistoryFile(),
	}
	for name, got := range dirs {
		if !filepath.IsAbs(got) {
			t.Errorf("%s() = %q, want absolute path", name, got)
		}
		if !strings.Contains(got, AppName) {
			t.Errorf("%s() = %q, want path containing %q", name, got, AppName)
		}
	}
}

func TestDetectProjectRoot(t *testing.T) {
	tests := []struct {
		name   string
		cwd    string
		marker string
		want   string
	}{
		{
			name:   "source checkout",
			cwd:    "/work/app",
			marker: DefaultBundledMarker,
			want:   "/work/app",
		},
		{
			name:   "bundled output",
			cwd:    "/work/app/.mastra/output",
			marker: DefaultBundledMarker,
			want:   "/work/app",
		},
		{
			name:   "detection disabled",
			cwd:    "/work/app/.mastra/output",
			marker: "",
			want:   "/work/app/.mastra/output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectProjectRoot(filepath.FromSlash(tt.cwd), tt.marker)
			if filepath.ToSlash(filepath.Clean(got)) != tt.want {
				t.Errorf("DetectProjectRoot(%q) = %q, want %q", tt.cwd, got, tt.want)
			}
		})
	}
}

func TestResolveProjectRoot_Override(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveProjectRoot(dir, DefaultBundledMarker)
	if err != nil {
		t.Fatalf("ResolveProjectRoot() error = %v", err)
	}
	if got != dir {
		t.Errorf("ResolveProjectRoot() = %q, want %q", got, dir)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("EnsureDir() did not create a directory")
	}
	// idempotent
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir() second call error = %v", err)
	}
}

package cmd

import (
	"strings"
	"testing"
)

func TestResolvedVersion_Ldflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := ResolvedVersion(); got != "v1.2.3" {
		t.Errorf("ResolvedVersion() = %q, want v1.2.3", got)
	}
	if got := UserAgent(); got != "smartmcp/1.2.3" {
		t.Errorf("UserAgent() = %q, want smartmcp/1.2.3", got)
	}
}

func TestUserAgent_Dev(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "dev"
	if got := UserAgent(); !strings.HasPrefix(got, Name+"/") {
		t.Errorf("UserAgent() = %q, want %s/ prefix", got, Name)
	}
}

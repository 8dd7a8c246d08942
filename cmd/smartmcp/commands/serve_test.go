package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/server"
)

func TestCheckTransport(t *testing.T) {
	tests := []struct {
		transport string
		wantErr   bool
	}{
		{server.TransportStdio, false},
		{server.TransportStreamableHTTP, false},
		{"sse", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			err := checkTransport(tt.transport)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkTransport(%q) error = %v, wantErr %v", tt.transport, err, tt.wantErr)
			}
			if err != nil {
				var exitErr *errors.ExitError
				if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
					t.Errorf("checkTransport(%q) should return a user error", tt.transport)
				}
			}
		})
	}
}

func TestServe_UnknownTransport(t *testing.T) {
	err := serve(context.Background(), nil, "smartmcp", "carrier-pigeon", "", strings.NewReader(""), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown transport") {
		t.Errorf("serve() error = %v, want unknown transport", err)
	}
}

package logging

import (
	"bytes"
	"testing"
)

func TestColorEnabled(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		tty  bool
		want bool
	}{
		{"terminal", nil, true, true},
		{"pipe", nil, false, false},
		{"NO_COLOR on terminal", map[string]string{"NO_COLOR": ""}, true, false},
		{"NO_COLOR beats FORCE_COLOR", map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "1"}, false, false},
		{"FORCE_COLOR on pipe", map[string]string{"FORCE_COLOR": "1"}, false, true},
		{"FORCE_COLOR=0 ignored", map[string]string{"FORCE_COLOR": "0"}, false, false},
		{"TERM=dumb", map[string]string{"TERM": "dumb"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			}
			if got := colorEnabled(lookup, tt.tty); got != tt.want {
				t.Errorf("colorEnabled(%v, tty=%v) = %v, want %v", tt.env, tt.tty, got, tt.want)
			}
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("a bytes.Buffer is never a terminal")
	}
}

package utils

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title", "My Article", "My Article"},
		{"invalid characters removed", `What? A "Guide" to <HTML>/CSS`, "What A Guide to HTMLCSS"},
		{"whitespace collapsed", "Too   many\n\tspaces", "Too many spaces"},
		{"empty becomes untitled", "", "Untitled"},
		{"only invalid characters", `<>:"/\|?*`, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_CapsLength(t *testing.T) {
	long := strings.Repeat("a", 300)
	if got := SanitizeFilename(long); len(got) > 200 {
		t.Errorf("sanitized name is %d chars", len(got))
	}
}

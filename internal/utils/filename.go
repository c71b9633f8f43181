package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace runs to collapse
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a document title into a safe filename stem.
func SanitizeFilename(title string) string {
	name := invalidFilenameChars.ReplaceAllString(title, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	// Leave room for an extension on length-limited filesystems.
	if len(name) > 200 {
		name = strings.TrimSpace(name[:200])
	}

	if name == "" {
		return "Untitled"
	}
	return name
}

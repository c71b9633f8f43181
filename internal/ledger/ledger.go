// Package ledger tracks which documents have already been delivered to
// the device. The backing store is an append-only text file with one
// export per line, kept human-readable so the history can be inspected or
// hand-edited between runs.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// Document IDs are recorded in parentheses at the end of each line.
var idPattern = regexp.MustCompile(`\(([^)]+)\)$`)

// Ledger is the durable record of completed exports. It assumes a single
// process per ledger file; concurrent runs are not supported.
type Ledger struct {
	path     string
	exported map[string]struct{}
	lines    []string
}

// Load reads the ledger file at path. A missing or unreadable file, and
// any line that is blank, a "#" comment, or otherwise unparseable, all
// degrade to "not exported yet" rather than failing.
func Load(path string) *Ledger {
	l := &Ledger{
		path:     path,
		exported: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		return l
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := idPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		l.exported[m[1]] = struct{}{}
		l.lines = append(l.lines, line)
	}

	return l
}

// IsExported reports whether the document has already been delivered.
func (l *Ledger) IsExported(docID string) bool {
	_, ok := l.exported[docID]
	return ok
}

// MarkExported records a completed delivery. The disk append happens
// before the in-memory set mutation: a crash in between under-counts
// (the document is reprocessed next run), never over-counts.
func (l *Ledger) MarkExported(docID, title string) error {
	line := fmt.Sprintf("%s - %s (%s)", time.Now().UTC().Format(time.RFC3339), title, docID)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	l.exported[docID] = struct{}{}
	l.lines = append(l.lines, line)
	return nil
}

// Len returns the number of recorded exports.
func (l *Ledger) Len() int {
	return len(l.exported)
}

// Entries returns the accepted ledger lines in file order.
func (l *Ledger) Entries() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

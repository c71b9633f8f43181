package uploader

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
)

// fakeCommand records invocations and substitutes a fixed binary.
func fakeCommand(t *testing.T, binary string, calls *[][]string) {
	t.Helper()
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		invocation := append([]string{name}, args...)
		*calls = append(*calls, invocation)
		return exec.CommandContext(ctx, binary)
	}
	t.Cleanup(func() { commandContext = orig })
}

func TestUpload_Success(t *testing.T) {
	var calls [][]string
	fakeCommand(t, "true", &calls)

	u := New("rmapi", "Readwise", nil)
	if err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "Article.epub")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(calls))
	}
	want := []string{"rmapi", "put", "Article.epub", "Readwise"}
	for i, arg := range want {
		if calls[0][i] != arg {
			t.Errorf("arg %d = %q, want %q", i, calls[0][i], arg)
		}
	}
}

func TestUpload_FailureIsError(t *testing.T) {
	var calls [][]string
	fakeCommand(t, "false", &calls)

	u := New("rmapi", "Readwise", nil)
	if err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "Article.epub")); err == nil {
		t.Fatal("expected error for failing upload")
	}
}

func TestCheck_MissingBinary(t *testing.T) {
	u := New("/nonexistent/rmapi-binary", "Readwise", nil)
	if err := u.Check(context.Background()); err == nil {
		t.Fatal("expected error for missing rmapi binary")
	}
}

func TestEnsureFolder_CreatesWhenFindFails(t *testing.T) {
	var calls [][]string
	// "false" makes find fail, triggering mkdir.
	fakeCommand(t, "false", &calls)

	u := New("rmapi", "Readwise", nil)
	u.EnsureFolder(context.Background())

	if len(calls) != 2 {
		t.Fatalf("expected find + mkdir, got %d calls", len(calls))
	}
	if calls[0][1] != "find" || calls[1][1] != "mkdir" {
		t.Errorf("unexpected commands: %v", calls)
	}
}

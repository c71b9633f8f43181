// Package uploader delivers files to the reMarkable cloud through the
// rmapi command-line tool.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Uploader wraps the rmapi binary. Upload failures are normal, handled
// outcomes for the caller, never panics.
type Uploader struct {
	rmapiPath string
	folder    string
	logger    *slog.Logger
}

// New creates an Uploader for the given rmapi binary and device folder.
func New(rmapiPath, folder string, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{rmapiPath: rmapiPath, folder: folder, logger: logger}
}

// Check verifies that the rmapi binary runs at all.
func (u *Uploader) Check(ctx context.Context) error {
	cmd := commandContext(ctx, u.rmapiPath, "version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rmapi not found or not working (path %q): %w", u.rmapiPath, err)
	}
	return nil
}

// EnsureFolder creates the target folder on the device if it is missing.
// Failures are logged and ignored; the upload itself will surface any
// real problem.
func (u *Uploader) EnsureFolder(ctx context.Context) {
	var out bytes.Buffer
	find := commandContext(ctx, u.rmapiPath, "find", u.folder)
	find.Stdout = &out
	err := find.Run()
	if err == nil && strings.TrimSpace(out.String()) != "" {
		return
	}

	u.logger.Info("creating folder on reMarkable", "folder", u.folder)
	if err := commandContext(ctx, u.rmapiPath, "mkdir", u.folder).Run(); err != nil {
		u.logger.Warn("could not ensure folder exists", "folder", u.folder, "error", err)
	}
}

// Upload sends the file to the configured folder. The command runs from
// the file's directory so rmapi sees a bare relative name.
func (u *Uploader) Upload(ctx context.Context, filePath string) error {
	name := filepath.Base(filePath)
	u.logger.Info("uploading to reMarkable", "file", name)

	var stderr bytes.Buffer
	cmd := commandContext(ctx, u.rmapiPath, "put", name, u.folder)
	cmd.Dir = filepath.Dir(filePath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("upload %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("upload %s: %w", name, err)
	}

	u.logger.Info("uploaded", "file", name)
	return nil
}

// Package sync drives one full synchronization run: list tagged
// documents, skip what the ledger already recorded, convert or download
// each remaining one, upload it, and record the export.
package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"remsync/internal/readwise"
	"remsync/internal/utils"
)

// DocumentSource lists and fetches documents from the reading-list
// service.
type DocumentSource interface {
	ListDocuments(ctx context.Context, locations []string, tag string) ([]readwise.Document, error)
	DocumentContent(ctx context.Context, id string) (string, error)
}

// Converter produces an EPUB file from article HTML.
type Converter interface {
	HTMLToEPUB(ctx context.Context, htmlContent, title, author, outputPath string) error
}

// Uploader delivers a local file to the device.
type Uploader interface {
	Upload(ctx context.Context, filePath string) error
}

// ExportLedger gates re-processing of already-delivered documents.
type ExportLedger interface {
	IsExported(docID string) bool
	MarkExported(docID, title string) error
}

// Options carries the run parameters.
type Options struct {
	Locations []string
	Tag       string
	TempDir   string
}

// Syncer wires the collaborators for a run.
type Syncer struct {
	source    DocumentSource
	converter Converter
	uploader  Uploader
	ledger    ExportLedger
	opts      Options

	// Used for direct PDF downloads, which are not rate limited.
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Syncer.
func New(source DocumentSource, converter Converter, uploader Uploader, ledger ExportLedger, opts Options, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		source:     source,
		converter:  converter,
		uploader:   uploader,
		ledger:     ledger,
		opts:       opts,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Run performs one synchronization pass. Listing failures abort the run;
// everything after that is per-document: a failed document is logged,
// left unmarked so the next run retries it, and the loop continues.
func (s *Syncer) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	defer s.cleanupTempFiles()

	if err := os.MkdirAll(s.opts.TempDir, 0o755); err != nil {
		return summary, fmt.Errorf("create temp dir: %w", err)
	}

	s.logger.Info("starting sync", "tag", s.opts.Tag, "locations", s.opts.Locations)

	documents, err := s.source.ListDocuments(ctx, s.opts.Locations, s.opts.Tag)
	if err != nil {
		return summary, fmt.Errorf("fetch documents: %w", err)
	}
	summary.Found = len(documents)
	s.logger.Info("found documents", "count", len(documents), "tag", s.opts.Tag)

	var pending []readwise.Document
	for _, doc := range documents {
		if !s.ledger.IsExported(doc.ID) {
			pending = append(pending, doc)
		}
	}
	summary.New = len(pending)
	s.logger.Info("new documents to sync", "count", len(pending))

	for i, doc := range pending {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		s.logger.Info("processing document",
			"n", i+1, "total", len(pending), "title", doc.Title)

		outcome := s.processDocument(ctx, doc)
		summary.record(outcome)

		switch outcome.Status {
		case StatusDone:
			s.logger.Info("synced document", "title", doc.Title)
		case StatusSkipped:
			s.logger.Warn("skipped document", "title", doc.Title, "reason", outcome.Reason)
		case StatusFailed:
			s.logger.Error("failed to process document",
				"title", doc.Title, "reason", outcome.Reason, "error", outcome.Err)
		}
	}

	s.logger.Info("sync completed", "processed", summary.New,
		"done", summary.Done, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// processDocument handles one document end to end. It never returns an
// error: every failure is folded into the Outcome so the run continues.
func (s *Syncer) processDocument(ctx context.Context, doc readwise.Document) Outcome {
	// Duplicates across locations reach this point once per listing; the
	// ledger check here stops the second copy after the first uploads.
	if s.ledger.IsExported(doc.ID) {
		return skipped(doc, "already exported")
	}

	if doc.Category == readwise.CategoryPDF {
		return s.processPDF(ctx, doc)
	}
	return s.processArticle(ctx, doc)
}

func (s *Syncer) processArticle(ctx context.Context, doc readwise.Document) Outcome {
	htmlContent := doc.HTMLContent
	if htmlContent == "" {
		fetched, err := s.source.DocumentContent(ctx, doc.ID)
		if err != nil {
			return failed(doc, "fetch content", err)
		}
		htmlContent = fetched
	}
	if htmlContent == "" {
		return skipped(doc, "no HTML content available")
	}

	outputPath := filepath.Join(s.opts.TempDir, utils.SanitizeFilename(doc.Title)+".epub")
	if err := s.converter.HTMLToEPUB(ctx, htmlContent, doc.Title, doc.Author, outputPath); err != nil {
		return failed(doc, "convert to EPUB", err)
	}

	return s.deliver(ctx, doc, outputPath)
}

func (s *Syncer) processPDF(ctx context.Context, doc readwise.Document) Outcome {
	if doc.SourceURL == "" {
		return skipped(doc, "no source URL for PDF")
	}

	outputPath := filepath.Join(s.opts.TempDir, utils.SanitizeFilename(doc.Title)+".pdf")
	if err := s.downloadFile(ctx, doc.SourceURL, outputPath); err != nil {
		return failed(doc, "download PDF", err)
	}

	return s.deliver(ctx, doc, outputPath)
}

// deliver uploads the artifact and, only on confirmed success, records
// the export in the ledger.
func (s *Syncer) deliver(ctx context.Context, doc readwise.Document, path string) Outcome {
	if err := s.uploader.Upload(ctx, path); err != nil {
		return failed(doc, "upload", err)
	}
	if err := s.ledger.MarkExported(doc.ID, doc.Title); err != nil {
		// The document reached the device; an unrecorded export means
		// one redundant upload next run, not data loss.
		s.logger.Error("could not record export", "title", doc.Title, "error", err)
	}
	return Outcome{DocID: doc.ID, Title: doc.Title, Status: StatusDone}
}

func (s *Syncer) downloadFile(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outputPath)
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

// cleanupTempFiles removes conversion artifacts at end of run. Best
// effort: cleanup failures are logged and swallowed.
func (s *Syncer) cleanupTempFiles() {
	for _, pattern := range []string{"*.epub", "*.pdf"} {
		matches, err := filepath.Glob(filepath.Join(s.opts.TempDir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("could not clean up temp file", "path", path, "error", err)
			}
		}
	}
}

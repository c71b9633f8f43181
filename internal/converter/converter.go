// Package converter turns article HTML into a self-contained EPUB,
// embedding remote images through the rate-limited fetcher.
package converter

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remsync/internal/epub"
	"remsync/internal/images"
	"remsync/internal/readwise"
)

// ImageFetcher supplies image bytes for absolute http(s) URLs. A nil
// result with a nil error means the image is unavailable and the
// document proceeds without it.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Converter assembles EPUB files from article HTML.
type Converter struct {
	fetcher ImageFetcher
	logger  *slog.Logger
}

// New creates a Converter using the given image fetcher.
func New(fetcher ImageFetcher, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{fetcher: fetcher, logger: logger}
}

// HTMLToEPUB writes an EPUB for the document at outputPath. Embedded
// images are fetched best-effort: a failed image keeps its original
// remote src and conversion still succeeds.
func (c *Converter) HTMLToEPUB(ctx context.Context, htmlContent, title, author, outputPath string) error {
	book := epub.NewBook(title)

	withAuthor := author != "" && author != readwise.AuthorUnknown
	if withAuthor {
		book.SetAuthor(author)
	}

	if htmlContent == "" {
		book.SetBody(fmt.Sprintf("<h1>%s</h1><p>No content available</p>", html.EscapeString(title)))
		return book.Write(outputPath)
	}

	body, err := c.embedImages(ctx, htmlContent, book)
	if err != nil {
		return err
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("<h1>%s</h1>", html.EscapeString(title)))
	if withAuthor {
		parts = append(parts, fmt.Sprintf("<p><em>by %s</em></p>", html.EscapeString(author)))
		parts = append(parts, "<hr/>")
	}
	parts = append(parts, body)
	book.SetBody(strings.Join(parts, ""))

	return book.Write(outputPath)
}

// embedImages rewrites <img> elements in document order: each absolute
// http(s) src that fetches successfully is renamed to img_<n>.<ext> and
// registered with the book; everything else is left untouched.
func (c *Converter) embedImages(ctx context.Context, htmlContent string, book *epub.Book) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	imgs := doc.Find("img")
	if n := imgs.Length(); n > 0 {
		c.logger.Info("processing images", "count", n)
	}

	counter := 0
	var fetchErr error
	imgs.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || !isRemote(src) {
			return true
		}

		data, err := c.fetcher.Fetch(ctx, src)
		if err != nil {
			fetchErr = err
			return false
		}
		if data == nil {
			c.logger.Warn("failed to fetch image", "src", src)
			return true
		}

		name := fmt.Sprintf("img_%d.%s", counter, images.Extension(src, data))
		book.AddImage(name, data)
		sel.SetAttr("src", name)
		sel.SetAttr("style", "max-width: 100%; height: auto;")
		counter++
		return true
	})
	if fetchErr != nil {
		return "", fetchErr
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}
	return body, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Package epub writes minimal EPUB 3 files: a single XHTML chapter plus
// embedded images, which is all a converted article needs.
package epub

import (
	"archive/zip"
	"fmt"
	"html"
	"os"
	"strings"
	"time"
)

const mimetype = "application/epub+zip"

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

var imageMediaTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
}

type imageItem struct {
	name string
	data []byte
}

// Book assembles one e-book: title, optional author, one HTML body, and
// any number of named image blobs referenced from the body.
type Book struct {
	title      string
	author     string
	identifier string
	body       string
	images     []imageItem
}

// NewBook creates a book with a timestamp-derived identifier.
func NewBook(title string) *Book {
	return &Book{
		title:      title,
		identifier: "readwise_" + time.Now().UTC().Format(time.RFC3339),
	}
}

// SetAuthor sets the creator metadata.
func (b *Book) SetAuthor(author string) {
	b.author = author
}

// SetBody sets the chapter body HTML. The fragment is embedded as-is
// inside the chapter's <body>.
func (b *Book) SetBody(bodyHTML string) {
	b.body = bodyHTML
}

// AddImage embeds an image blob under the given file name. The body may
// reference it by that name directly.
func (b *Book) AddImage(name string, data []byte) {
	b.images = append(b.images, imageItem{name: name, data: data})
}

// Write produces the EPUB file at path.
func (b *Book) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create epub: %w", err)
	}

	zw := zip.NewWriter(f)

	// The mimetype entry must be first and uncompressed.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err == nil {
		_, err = mt.Write([]byte(mimetype))
	}
	if err == nil {
		err = writeEntry(zw, "META-INF/container.xml", []byte(containerXML))
	}
	if err == nil {
		err = writeEntry(zw, "OEBPS/content.opf", []byte(b.packageDocument()))
	}
	if err == nil {
		err = writeEntry(zw, "OEBPS/content.xhtml", []byte(b.chapter()))
	}
	for _, img := range b.images {
		if err != nil {
			break
		}
		err = writeEntry(zw, "OEBPS/"+img.name, img.data)
	}

	if err != nil {
		zw.Close()
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write epub: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("finalize epub: %w", err)
	}
	return f.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (b *Book) packageDocument() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="book-id">` + "\n")
	sb.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	fmt.Fprintf(&sb, "    <dc:identifier id=\"book-id\">%s</dc:identifier>\n", html.EscapeString(b.identifier))
	fmt.Fprintf(&sb, "    <dc:title>%s</dc:title>\n", html.EscapeString(b.title))
	sb.WriteString("    <dc:language>en</dc:language>\n")
	if b.author != "" {
		fmt.Fprintf(&sb, "    <dc:creator>%s</dc:creator>\n", html.EscapeString(b.author))
	}
	fmt.Fprintf(&sb, "    <meta property=\"dcterms:modified\">%s</meta>\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	sb.WriteString("  </metadata>\n")

	sb.WriteString("  <manifest>\n")
	sb.WriteString(`    <item id="chapter" href="content.xhtml" media-type="application/xhtml+xml"/>` + "\n")
	for i, img := range b.images {
		fmt.Fprintf(&sb, "    <item id=\"image%d\" href=\"%s\" media-type=\"%s\"/>\n",
			i, html.EscapeString(img.name), mediaType(img.name))
	}
	sb.WriteString("  </manifest>\n")

	// Chapter-only spine, no navigation document.
	sb.WriteString("  <spine>\n    <itemref idref=\"chapter\"/>\n  </spine>\n")
	sb.WriteString("</package>\n")

	return sb.String()
}

func (b *Book) chapter() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	fmt.Fprintf(&sb, "<head><title>%s</title></head>\n", html.EscapeString(b.title))
	sb.WriteString("<body>\n")
	sb.WriteString(b.body)
	sb.WriteString("\n</body>\n</html>\n")

	return sb.String()
}

func mediaType(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		if mt, ok := imageMediaTypes[strings.ToLower(name[idx+1:])]; ok {
			return mt
		}
	}
	return "image/jpeg"
}

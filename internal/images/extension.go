package images

import (
	"bytes"
	"strings"
)

// urlExtensions maps trusted trailing URL extensions to on-disk ones.
// SVG is deliberately absent: an SVG is recognizable only by its content,
// so a ".svg" URL serving something unsniffable is not trusted.
var urlExtensions = map[string]string{
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
	"jpeg": "jpg",
	"bmp":  "bmp",
}

// Extension classifies fetched image bytes to pick a file extension.
// Magic-byte sniffing wins over the URL suffix: a ".png" URL that serves
// JPEG bytes is a jpg. Unclassifiable content defaults to jpg.
func Extension(url string, data []byte) string {
	if ext := sniff(data); ext != "" {
		return ext
	}

	if idx := strings.LastIndexByte(url, '.'); idx >= 0 {
		ext := strings.ToLower(url[idx+1:])
		if cut := strings.IndexByte(ext, '?'); cut >= 0 {
			ext = ext[:cut]
		}
		if mapped, ok := urlExtensions[ext]; ok {
			return mapped
		}
	}

	return "jpg"
}

func sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "jpg"
	case bytes.HasPrefix(data, []byte("GIF")):
		return "gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Contains(head(data, 12), []byte("WEBP")):
		return "webp"
	case bytes.HasPrefix(data, []byte("<svg")) || bytes.Contains(head(data, 100), []byte("<svg")):
		return "svg"
	}
	return ""
}

func head(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}

// Package extract turns uploaded bytes into plain text for summaries and answers.
package extract

import (
	"bytes"
	"errors"
	"path"
	"strings"
	"unicode/utf8"
)

// Extractor converts one document format to text.
type Extractor interface {
	CanExtract(filename string) bool
	Extract(content []byte) (string, error)
}

var registry []Extractor

// Register adds an extractor. Earlier registrations win.
func Register(e Extractor) {
	registry = append(registry, e)
}

// ErrUnsupported indicates content that is neither a known format nor readable text.
var ErrUnsupported = errors.New("unsupported document format")

// Text extracts text from content using the extractor matched by filename.
// Unknown formats fall back to the raw bytes when they are valid UTF-8 text.
func Text(filename string, content []byte) (string, error) {
	name := path.Base(filename)
	for _, e := range registry {
		if e.CanExtract(name) {
			return e.Extract(content)
		}
	}
	if looksLikeText(content) {
		return normalize(string(content)), nil
	}
	return "", ErrUnsupported
}

func looksLikeText(b []byte) bool {
	return len(b) > 0 && utf8.Valid(b) && bytes.IndexByte(b, 0) < 0
}

// normalize unifies line endings and collapses runs of blank lines.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func init() {
	Register(txtExtractor{})
	Register(markdownExtractor{})
	Register(docxExtractor{})
	Register(csvExtractor{})
	Register(xlsxExtractor{})
	Register(pdfExtractor{})
}

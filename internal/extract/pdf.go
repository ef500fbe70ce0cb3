package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

type pdfExtractor struct{}

func (pdfExtractor) CanExtract(filename string) bool { return hasExt(filename, ".pdf") }

// maxPDFText bounds the plain text read out of one document.
const maxPDFText = 8 << 20

// Extract returns the text of every page in order. Scanned or image-only
// PDFs yield empty text.
func (pdfExtractor) Extract(content []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(content, " \r\n\t"), []byte("%PDF")) {
		if looksLikeText(content) {
			return normalize(string(content)), nil
		}
		return "", fmt.Errorf("%w: not a pdf document", ErrUnsupported)
	}
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(io.LimitReader(plain, maxPDFText))
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return normalize(string(b)), nil
}

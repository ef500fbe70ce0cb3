package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type docxExtractor struct{}

func (docxExtractor) CanExtract(filename string) bool { return hasExt(filename, ".docx") }

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// Extract reads word/document.xml and strips its markup, one line per paragraph.
func (docxExtractor) Extract(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return "", fmt.Errorf("document.xml not found in DOCX")
	}
	text := docxParagraphEnd.ReplaceAllString(string(docXML), "\n")
	text = xmlTag.ReplaceAllString(text, "")
	text = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'").Replace(text)
	return normalize(text), nil
}

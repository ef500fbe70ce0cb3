package extract

import (
	"regexp"
	"strings"
)

type markdownExtractor struct{}

func (markdownExtractor) CanExtract(filename string) bool {
	return hasExt(filename, ".md", ".markdown")
}

var (
	mdHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	mdBullet  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	mdLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// Extract drops heading, bullet and link markup so lines read as prose.
func (markdownExtractor) Extract(content []byte) (string, error) {
	text := normalize(string(content))
	text = mdHeading.ReplaceAllString(text, "")
	text = mdBullet.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	text = strings.NewReplacer("**", "", "__", "", "`", "").Replace(text)
	return text, nil
}

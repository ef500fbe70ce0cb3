package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

type csvExtractor struct{}

func (csvExtractor) CanExtract(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

// Extract renders each record as one "a | b | c" line.
func (csvExtractor) Extract(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	if bytes.Count(content, []byte("\t")) > bytes.Count(content, []byte(",")) {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, strings.Join(rec, " | "))
	}
	return strings.Join(lines, "\n"), nil
}

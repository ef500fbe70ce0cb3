package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

type xlsxExtractor struct{}

// maxZipEntry bounds the inflated size of one workbook part.
const maxZipEntry = 32 << 20

func (xlsxExtractor) CanExtract(filename string) bool { return hasExt(filename, ".xlsx") }

// Extract renders every sheet in workbook order. Each sheet starts with a
// "# <name>" line followed by its rows as "a | b | c".
func (xlsxExtractor) Extract(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	shared := sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))
	rels := relationships(zipEntry(zr, "xl/_rels/workbook.xml.rels"))
	sheets := workbookSheets(zipEntry(zr, "xl/workbook.xml"))
	if len(sheets) == 0 {
		return "", fmt.Errorf("open xlsx: workbook has no sheets")
	}

	var b strings.Builder
	for i, s := range sheets {
		target, ok := rels[s.rid]
		if !ok {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		data := zipEntry(zr, sheetPath(target))
		if data == nil {
			continue
		}
		fmt.Fprintf(&b, "# %s\n", s.name)
		rows := &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
		for {
			row, ok := rows.next()
			if !ok {
				break
			}
			for len(row) > 0 && row[len(row)-1] == "" {
				row = row[:len(row)-1]
			}
			if len(row) > 0 {
				b.WriteString(strings.Join(row, " | "))
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return normalize(b.String()), nil
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(io.LimitReader(rc, maxZipEntry))
		return b
	}
	return nil
}

type sheetRef struct{ name, rid string }

func workbookSheets(data []byte) []sheetRef {
	var wb struct {
		Sheets []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheets>sheet"`
	}
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil
	}
	out := make([]sheetRef, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		out = append(out, sheetRef{name: s.Name, rid: s.RID})
	}
	return out
}

func relationships(data []byte) map[string]string {
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	out := map[string]string{}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return out
	}
	for _, r := range rels.Items {
		out[r.ID] = r.Target
	}
	return out
}

// sheetPath maps a relationship target to its zip entry. Targets are
// relative to xl/ unless they carry a leading slash.
func sheetPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// rowReader streams <row> elements of a worksheet as cell strings.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

func (r *rowReader) next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, row = true, nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := columnIndex(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				return row, true
			}
		}
	}
}

// cellValue reads up to the closing </c>. Shared strings are resolved by index.
func (r *rowReader) cellValue(typ string) string {
	var val strings.Builder
	inVal := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				inVal = true
			}
		case xml.CharData:
			if inVal {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				inVal = false
			case "c":
				if typ != "s" {
					return val.String()
				}
				i, err := strconv.Atoi(strings.TrimSpace(val.String()))
				if err != nil || i < 0 || i >= len(r.shared) {
					return ""
				}
				return r.shared[i]
			}
		}
	}
}

// columnIndex turns a cell reference such as "C12" into a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

package extract_test

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/KaramelBytes/docchat-cli/internal/extract"
)

func TestTextTXT(t *testing.T) {
	out, err := extract.Text("notes.txt", []byte("hello world\r\n\r\n\r\n\r\nthis is txt\n"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "hello world\n\nthis is txt" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTextMarkdownStripsMarkup(t *testing.T) {
	in := "# Title\n\nBody with a [link](http://x.test) and **bold**\n\n- list item\n"
	out, err := extract.Text("README.md", []byte(in))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Title\n\nBody with a link and bold\n\nlist item"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTextDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	xml := `<w:document><w:body><w:p><w:r><w:t>First &amp; foremost</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	out, err := extract.Text("report.DOCX", buf.Bytes())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "First & foremost\nSecond" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTextDOCXWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("other.xml")
	_ = zw.Close()
	if _, err := extract.Text("x.docx", buf.Bytes()); err == nil {
		t.Fatal("expected an error for a DOCX without document.xml")
	}
}

func TestTextCSV(t *testing.T) {
	out, err := extract.Text("data.csv", []byte("name,qty\napples,3\n"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "name | qty\napples | 3" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTextFallbacks(t *testing.T) {
	out, err := extract.Text("scan.pdf", []byte("plain text body\n"))
	if err != nil || out != "plain text body" {
		t.Fatalf("text fallback = %q, %v", out, err)
	}
	if _, err := extract.Text("scan.pdf", []byte{0x25, 0x50, 0x00, 0xff}); !errors.Is(err, extract.ErrUnsupported) {
		t.Fatalf("binary content should be unsupported, got %v", err)
	}
	if _, err := extract.Text("empty.bin", nil); !errors.Is(err, extract.ErrUnsupported) {
		t.Fatalf("empty content should be unsupported, got %v", err)
	}
}

// buildPDF assembles a one-page PDF with a correct xref table around content.
func buildPDF(t *testing.T, content string, compress bool) []byte {
	t.Helper()
	stream := []byte(content)
	filter := ""
	if compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(stream); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		stream = z.Bytes()
		filter = " /Filter /FlateDecode"
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d%s >>\nstream\n%s\nendstream", len(stream), filter, stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestTextPDF(t *testing.T) {
	content := "BT /F1 12 Tf 72 712 Td (Quarterly report) Tj T* [(Revenue ) -20 (grew \\(a lot\\))] TJ ET"
	for _, compress := range []bool{false, true} {
		out, err := extract.Text("q3.pdf", buildPDF(t, content, compress))
		if err != nil {
			t.Fatalf("extract (compress=%v): %v", compress, err)
		}
		for _, want := range []string{"Quarterly report", "Revenue grew (a lot)"} {
			if !strings.Contains(out, want) {
				t.Fatalf("compress=%v: %q missing from %q", compress, want, out)
			}
		}
	}
}

func TestTextPDFNestedAndHexStrings(t *testing.T) {
	content := "BT /F1 12 Tf (Revenue (net) grew) Tj ET\nBT /F1 12 Tf T* <48656C6C6F> Tj ET"
	out, err := extract.Text("report.pdf", buildPDF(t, content, true))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "Revenue (net) grew") {
		t.Fatalf("nested literal lost: %q", out)
	}
	if !strings.Contains(out, "Hello") {
		t.Fatalf("hex string lost: %q", out)
	}
}

func TestTextPDFWithoutText(t *testing.T) {
	out, err := extract.Text("scan.pdf", buildPDF(t, "q 100 0 0 100 0 0 cm Q", true))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "" {
		t.Fatalf("image-only pdf should yield no text, got %q", out)
	}
}

func TestTextPDFCorrupt(t *testing.T) {
	if _, err := extract.Text("broken.pdf", []byte("%PDF-1.4\n\x00\x01garbage")); err == nil {
		t.Fatal("expected an error for a corrupt pdf")
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTextXLSX(t *testing.T) {
	const relNS = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	content := buildZip(t, map[string]string{
		"xl/workbook.xml": `<workbook ` + relNS + `><sheets>` +
			`<sheet name="Sales" sheetId="1" r:id="rId1"/>` +
			`<sheet name="Notes" sheetId="2" r:id="rId2"/>` +
			`</sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships>` +
			`<Relationship Id="rId1" Target="worksheets/sheet1.xml"/>` +
			`<Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/>` +
			`</Relationships>`,
		"xl/sharedStrings.xml": `<sst><si><t>region</t></si><si><t>units</t></si><si><t>north</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>` +
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>2</v></c><c r="C2"><v>42</v></c></row>` +
			`</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet><sheetData>` +
			`<row r="1"><c r="A1" t="inlineStr"><is><t>reviewed</t></is></c></row>` +
			`</sheetData></worksheet>`,
	})
	out, err := extract.Text("q3.xlsx", content)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "# Sales\nregion | units\nnorth |  | 42\n\n# Notes\nreviewed"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTextXLSXWithoutSheets(t *testing.T) {
	content := buildZip(t, map[string]string{"xl/workbook.xml": `<workbook><sheets/></workbook>`})
	if _, err := extract.Text("empty.xlsx", content); err == nil {
		t.Fatal("expected an error for a workbook without sheets")
	}
}

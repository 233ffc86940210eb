// File path: internal/documents/reader_test.go
package documents

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	var xmlBody strings.Builder
	xmlBody.WriteString(`<?xml version="1.0"?><document><body>`)
	for _, p := range paragraphs {
		xmlBody.WriteString("<p><r><t>")
		xmlBody.WriteString(p)
		xmlBody.WriteString("</t></r></p>")
	}
	xmlBody.WriteString(`</body></document>`)
	if _, err := w.Write([]byte(xmlBody.String())); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func buildXlsx(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Region"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "Revenue"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "A2", "EMEA"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B2", "120000"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestReadPlainText(t *testing.T) {
	r := NewReader()
	doc, err := r.Read("notes.txt", []byte("plain body"))
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	if doc.Text != "plain body" || doc.Name != "notes.txt" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if _, err := r.Read("README.MD", []byte("# heading")); err != nil {
		t.Fatalf("markdown should pass through: %v", err)
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	r := NewReader()
	_, err := r.Read("slides.pptx", []byte("x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadDocx(t *testing.T) {
	r := NewReader()
	content := buildDocx(t, []string{"First paragraph.", "Second paragraph."})
	doc, err := r.Read("brief.docx", content)
	if err != nil {
		t.Fatalf("read docx: %v", err)
	}
	if doc.Text != "First paragraph.\nSecond paragraph." {
		t.Fatalf("unexpected docx text: %q", doc.Text)
	}
}

func TestReadDocxRejectsGarbage(t *testing.T) {
	r := NewReader()
	if _, err := r.Read("broken.docx", []byte("not a zip archive")); err == nil {
		t.Fatalf("expected error for non-archive content")
	}
}

func TestReadXlsx(t *testing.T) {
	r := NewReader()
	doc, err := r.Read("pipeline.xlsx", buildXlsx(t))
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	if !strings.Contains(doc.Text, "## Sheet: Sheet1") {
		t.Fatalf("missing sheet header: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Region | Revenue") || !strings.Contains(doc.Text, "EMEA | 120000") {
		t.Fatalf("missing rows: %q", doc.Text)
	}
}

func TestReadAllSkipsUnreadable(t *testing.T) {
	r := NewReader()
	docs := r.ReadAll(map[string][]byte{
		"good.txt":   []byte("kept"),
		"bad.docx":   []byte("junk"),
		"image.webp": []byte{0xff},
	})
	if len(docs) != 1 {
		t.Fatalf("expected 1 readable document, got %d", len(docs))
	}
	if docs[0].Name != "good.txt" {
		t.Fatalf("wrong survivor: %+v", docs[0])
	}
}

func TestCombinedText(t *testing.T) {
	combined := CombinedText([]Document{
		{Name: "a.txt", Text: "alpha body"},
		{Name: "blank.txt", Text: "   "},
		{Name: "b.md", Text: "beta body"},
	})
	if !strings.Contains(combined, "### Document: a.txt\nalpha body") {
		t.Fatalf("missing first section: %q", combined)
	}
	if !strings.Contains(combined, "### Document: b.md\nbeta body") {
		t.Fatalf("missing second section: %q", combined)
	}
	if strings.Contains(combined, "blank.txt") {
		t.Fatalf("empty document must be dropped: %q", combined)
	}
	if CombinedText(nil) != "" {
		t.Fatalf("nil documents must render empty")
	}
}

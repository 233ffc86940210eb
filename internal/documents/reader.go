// File path: internal/documents/reader.go
package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fieldscale/povd/internal/common"
)

// ErrUnsupportedFormat is returned for file extensions the reader does not
// understand.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is the extracted plain-text content of one uploaded file.
type Document struct {
	Name string
	Text string
}

// Reader extracts text from uploaded sales collateral.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Read extracts text from the named file content. The format is chosen by
// extension: .txt and .md pass through, .docx and .xlsx are unpacked.
func (r *Reader) Read(name string, content []byte) (Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	logger := common.Logger()
	logger.Debug("documents: reading upload", "name", name, "ext", ext, "bytes", len(content))
	switch ext {
	case ".txt", ".md":
		return Document{Name: name, Text: string(content)}, nil
	case ".docx":
		text, err := extractDocx(content)
		if err != nil {
			return Document{}, fmt.Errorf("read docx %s: %w", name, err)
		}
		return Document{Name: name, Text: text}, nil
	case ".xlsx":
		text, err := extractXlsx(content)
		if err != nil {
			return Document{}, fmt.Errorf("read xlsx %s: %w", name, err)
		}
		return Document{Name: name, Text: text}, nil
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ReadAll extracts every file, skipping the ones that fail with a warning
// so one bad upload does not sink the batch.
func (r *Reader) ReadAll(files map[string][]byte) []Document {
	logger := common.Logger()
	docs := make([]Document, 0, len(files))
	for name, content := range files {
		doc, err := r.Read(name, content)
		if err != nil {
			logger.Warn("documents: skipping unreadable upload", "name", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// CombinedText joins extracted documents into a single block with per-file
// headers, for inclusion in prompt context.
func CombinedText(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("### Document: %s\n%s", doc.Name, text))
	}
	return strings.Join(parts, "\n\n")
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

func extractDocx(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		var body docxBody
		if err := xml.Unmarshal(data, &body); err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		var sb strings.Builder
		for _, para := range body.Paragraphs {
			var line strings.Builder
			for _, run := range para.Runs {
				for _, text := range run.Texts {
					line.WriteString(text)
				}
			}
			if line.Len() > 0 {
				sb.WriteString(line.String())
				sb.WriteString("\n")
			}
		}
		return strings.TrimSpace(sb.String()), nil
	}
	return "", fmt.Errorf("no word/document.xml in archive")
}

func extractXlsx(content []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	var sb strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString("## Sheet: ")
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

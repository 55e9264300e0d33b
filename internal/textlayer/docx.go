package textlayer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXReader handles .docx files. Body paragraphs become lines; each table
// row becomes one line with its cells separated by spaces, so a label cell
// stays next to its value cell.
type DOCXReader struct{}

func (p *DOCXReader) Read(_ context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var buf strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			writeLine(&buf, docxParagraphText(it))
		case *docx.Table:
			writeDocxTable(&buf, it)
		}
	}
	return buf.String(), nil
}

func writeDocxTable(buf *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if s := docxParagraphText(para); s != "" {
					parts = append(parts, s)
				}
			}
			if s := strings.Join(parts, " "); s != "" {
				cells = append(cells, s)
			}
			for _, nested := range cell.Tables {
				writeDocxTable(buf, nested)
			}
		}
		writeLine(buf, strings.Join(cells, " "))
	}
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&buf, c)
		case *docx.Hyperlink:
			writeRun(&buf, &c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		}
	}
}

func writeLine(buf *strings.Builder, s string) {
	if s == "" {
		return
	}
	buf.WriteString(s)
	buf.WriteByte('\n')
}

package textlayer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fumiama/go-docx"
)

func flat(s string) string { return strings.Join(strings.Fields(s), " ") }

func TestForFile_Extensions(t *testing.T) {
	for _, name := range []string{"a.pdf", "A.PDF", "b.txt", "c.md", "c.markdown", "d.html", "d.htm", "e.docx"} {
		if _, err := ForFile(name, Options{}); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("scan.png", Options{}); err == nil {
		t.Error("expected error for .png")
	}
	if IsSupportedExtension("sheet.csv") {
		t.Error("csv should not be supported")
	}
}

func TestPlainReader_InvalidUTF8(t *testing.T) {
	got, err := (&PlainReader{}).Read(context.Background(), strings.NewReader("Total: $5\xff"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Total: $5�" {
		t.Errorf("got %q", got)
	}
}

func TestRead_WhitespaceOnlyHasNoTextLayer(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader(" \n\t "), "blank.txt", Options{})
	if !errors.Is(err, ErrNoTextLayer) {
		t.Fatalf("expected ErrNoTextLayer, got %v", err)
	}
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("x"), "scan.tiff", Options{})
	if err == nil || errors.Is(err, ErrNoTextLayer) {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}

type blockingReader struct{ release chan struct{} }

func (b blockingReader) Read(p []byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

func TestRead_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Read(ctx, blockingReader{release: release}, "slow.txt", Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPDFReader_MalformedInput(t *testing.T) {
	_, err := (&PDFReader{}).Read(context.Background(), strings.NewReader("not a pdf"))
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestHTMLReader_BlocksAndTables(t *testing.T) {
	input := `<html><head><title>Invoice</title><style>p{}</style></head><body>
<p>Invoice #INV-31</p>
<table><tr><td>Bill To:</td><td>Acme Corp</td></tr><tr><td>Amount:</td><td>$90.00</td></tr></table>
<p>Services Rendered:</p><ul><li>Window cleaning service</li><li>Gutter repair work</li></ul>
<script>var total = "$1";</script>
</body></html>`
	got, err := (&HTMLReader{}).Read(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Invoice #INV-31 Bill To: Acme Corp Amount: $90.00 Services Rendered: - Window cleaning service - Gutter repair work"
	if flat(got) != want {
		t.Errorf("expected %q, got %q", want, flat(got))
	}
	if !strings.Contains(got, "Bill To: Acme Corp\n") {
		t.Errorf("table row should stay on one line: %q", got)
	}
}

func TestMarkdownReader_InlineAndLists(t *testing.T) {
	input := "# Invoice #INV-8\n\n**Bill To:** Initech LLC\n\nServices Rendered:\n\n- Network *audit* work\n- Firewall setup\n"
	got, err := (&MarkdownReader{}).Read(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Invoice #INV-8",
		"Bill To: Initech LLC",
		"Services Rendered:",
		"- Network audit work",
		"- Firewall setup",
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), got)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestDOCXReader_ParagraphsAndTable(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Invoice #INV-77")
	tbl := w.AddTable(1, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Amount:")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("$42.00")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := (&DOCXReader{}).Read(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Invoice #INV-77\n") {
		t.Errorf("missing paragraph line in %q", got)
	}
	if !strings.Contains(got, "Amount: $42.00\n") {
		t.Errorf("table row should read as one line, got %q", got)
	}
}

package extract

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
)

// buildPDF writes a minimal uncompressed PDF with one content stream per page
// and a correct xref table.
func buildPDF(pageStreams ...string) []byte {
	n := len(pageStreams)
	// objects: 1 catalog, 2 pages, 3 font, then (page, content) pairs
	total := 3 + 2*n
	offsets := make([]int, total+1)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	obj := func(num int, body string) {
		offsets[num] = b.Len()
		b.WriteString(strconv.Itoa(num) + " 0 obj\n" + body + "\nendobj\n")
	}

	kids := make([]string, n)
	for i := range pageStreams {
		kids[i] = strconv.Itoa(4+2*i) + " 0 R"
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids ["+strings.Join(kids, " ")+"] /Count "+strconv.Itoa(n)+" >>")
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, s := range pageStreams {
		page, content := 4+2*i, 5+2*i
		obj(page, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents "+strconv.Itoa(content)+" 0 R /Resources << /Font << /F1 3 0 R >> >> >>")
		obj(content, "<< /Length "+strconv.Itoa(len(s))+" >>\nstream\n"+s+"\nendstream")
	}

	xref := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(total+1) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		off := strconv.Itoa(offsets[i])
		b.WriteString(strings.Repeat("0", 10-len(off)) + off + " 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(total+1) + " /Root 1 0 R >>\nstartxref\n" + strconv.Itoa(xref) + "\n%%EOF\n")
	return []byte(b.String())
}

func textStream(s string) string {
	return "BT\n/F1 12 Tf\n72 720 Td\n(" + s + ") Tj\nET"
}

func TestExtractPDFPagesInOrder(t *testing.T) {
	raw := buildPDF(textStream("First page claim"), "q Q", textStream("Third page source"))
	path := writeFile(t, "doc.pdf", raw)

	e := New(Config{}, &stubRunner{}, nil)
	got, err := e.Extract(context.Background(), path, "pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	first := strings.Index(got, "First page claim")
	third := strings.Index(got, "Third page source")
	if first < 0 || third < 0 {
		t.Fatalf("missing page text in %q", got)
	}
	if first > third {
		t.Errorf("pages out of order: %q", got)
	}
}

func TestExtractPDFSingleLineStream(t *testing.T) {
	raw := buildPDF("BT /F1 12 Tf 72 720 Td (Hello World) Tj ET")
	path := writeFile(t, "one.pdf", raw)

	e := New(Config{}, &stubRunner{}, nil)
	got, err := e.Extract(context.Background(), path, "pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Hello World" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractPDFCorrupt(t *testing.T) {
	path := writeFile(t, "bad.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))

	e := New(Config{}, &stubRunner{}, nil)
	if _, err := e.Extract(context.Background(), path, "pdf"); !errors.Is(err, analysis.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"simple Tj", "BT\n(Hello  world) Tj\nET", "Hello world"},
		{"TJ array with kerning", "BT\n[(Fact) -250 (check)] TJ\nET", "Factcheck"},
		{"escaped parens", `BT` + "\n" + `(a \(quoted\) word) Tj` + "\nET", "a (quoted) word"},
		{"nested parens", "BT\n(outer (inner) text) Tj\nET", "outer (inner) text"},
		{"octal escape", `BT` + "\n" + `(A\040B) Tj` + "\nET", "A B"},
		{"line moves", "BT\n(one) Tj\nT*\n(two) Tj\n0 -14 Td\n(three) Tj\nET", "one\ntwo\nthree"},
		{"quote operator", "BT\n(first) Tj\n(second) '\nET", "first\nsecond"},
		{"no text", "q 1 0 0 1 0 0 cm /Im1 Do Q", ""},
		{"one-line text object", "BT /F1 12 Tf 72 720 Td (Hello World) Tj ET", "Hello World"},
		{"TJ word gap then Td", "BT\n[(a)-333(b)]TJ 0 -14 Td [(c)]TJ\nET", "a b\nc"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"hex odd digits and spaces", "BT <48 69 2> Tj (!) Tj ET", "Hi !"},
		{"utf-16 hex string", "BT <FEFF00E9007400E9> Tj ET", "\u00e9t\u00e9"},
		{"horizontal Td separates words", "BT (claim) Tj 40 0 Td (checked) Tj ET", "claim checked"},
		{"latin-1 literal", "BT (caf\\351) Tj ET", "caf\u00e9"},
		{"comment ignored", "% (hidden) Tj\nBT (kept) Tj ET", "kept"},
		{"dictionary operand", "/Span <</ActualText (x)>> BDC BT (y) Tj ET EMC", "y"},
		{"inline image skipped", "BI /W 1 /H 1 /BPC 8 ID \x00(x) Tj\xff EI\nBT (after) Tj ET", "after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textFromContentStream([]byte(tt.stream)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

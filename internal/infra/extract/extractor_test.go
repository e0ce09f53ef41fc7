package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
)

type stubRunner struct {
	out   string
	err   error
	calls [][]string
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.out), nil, s.err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractText(t *testing.T) {
	e := New(Config{}, &stubRunner{}, nil)
	content := "Línea uno\n\n  spaced  \n"
	path := writeFile(t, "a.txt", []byte(content))

	got, err := e.Extract(context.Background(), path, "txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != content {
		t.Errorf("text not verbatim: %q", got)
	}
}

func TestExtractTextInvalidUTF8(t *testing.T) {
	e := New(Config{}, &stubRunner{}, nil)
	path := writeFile(t, "bad.txt", []byte{0xff, 0xfe, 'a', 0xc3})

	_, err := e.Extract(context.Background(), path, "TXT")
	if !errors.Is(err, analysis.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestExtractUnsupported(t *testing.T) {
	e := New(Config{}, &stubRunner{}, nil)
	for _, typ := range []string{"exe", "", "odt"} {
		if _, err := e.Extract(context.Background(), "/nope", typ); !errors.Is(err, analysis.ErrUnsupportedType) {
			t.Errorf("type %q: expected ErrUnsupportedType, got %v", typ, err)
		}
	}
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`, body)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	body := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Breaking</w:t></w:r><w:r><w:t xml:space="preserve"> news</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>para</w:t></w:r></w:p>`
	path := writeFile(t, "a.docx", buildDocx(t, body))

	e := New(Config{}, &stubRunner{}, nil)
	for _, typ := range []string{"docx", "doc"} {
		got, err := e.Extract(context.Background(), path, typ)
		if err != nil {
			t.Fatalf("Extract(%s): %v", typ, err)
		}
		if want := "Breaking news\n\nSecond\tpara"; got != want {
			t.Errorf("Extract(%s) = %q, want %q", typ, got, want)
		}
	}
}

func TestExtractDocxMalformed(t *testing.T) {
	e := New(Config{}, &stubRunner{}, nil)

	notZip := writeFile(t, "bad.docx", []byte("not a zip"))
	if _, err := e.Extract(context.Background(), notZip, "docx"); !errors.Is(err, analysis.ErrExtraction) {
		t.Errorf("not a zip: expected ErrExtraction, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.xml")
	w.Write([]byte("<x/>"))
	zw.Close()
	noDoc := writeFile(t, "nodoc.docx", buf.Bytes())
	if _, err := e.Extract(context.Background(), noDoc, "docx"); !errors.Is(err, analysis.ErrExtraction) {
		t.Errorf("missing document.xml: expected ErrExtraction, got %v", err)
	}

	broken := writeFile(t, "broken.docx", buildDocx(t, `<w:p><w:r><w:t>unclosed`))
	if _, err := e.Extract(context.Background(), broken, "docx"); !errors.Is(err, analysis.ErrExtraction) {
		t.Errorf("broken xml: expected ErrExtraction, got %v", err)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractImageRunsTesseract(t *testing.T) {
	runner := &stubRunner{out: "  FAKE HEADLINE\n\f"}
	e := New(Config{TesseractLang: "eng+fra", TessdataDir: "/data"}, runner, nil)
	path := writeFile(t, "a.png", pngBytes(t))

	got, err := e.Extract(context.Background(), path, "PNG")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "FAKE HEADLINE" {
		t.Errorf("text = %q", got)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 tesseract call, got %d", len(runner.calls))
	}
	want := []string{"tesseract", path, "stdout", "-l", "eng+fra", "--tessdata-dir", "/data"}
	if strings.Join(runner.calls[0], " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", runner.calls[0], want)
	}
}

func TestExtractImageWithoutText(t *testing.T) {
	e := New(Config{}, &stubRunner{out: "\n"}, nil)
	path := writeFile(t, "blank.png", pngBytes(t))

	got, err := e.Extract(context.Background(), path, "png")
	if err != nil {
		t.Fatalf("empty OCR output must not fail: %v", err)
	}
	if got != "" {
		t.Errorf("text = %q, want empty", got)
	}
}

func TestExtractImageErrors(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1")}
	e := New(Config{}, runner, nil)

	good := writeFile(t, "a.png", pngBytes(t))
	if _, err := e.Extract(context.Background(), good, "png"); !errors.Is(err, analysis.ErrExtraction) {
		t.Errorf("tesseract failure: expected ErrExtraction, got %v", err)
	}

	corrupt := writeFile(t, "b.jpg", []byte("not an image"))
	if _, err := e.Extract(context.Background(), corrupt, "jpg"); !errors.Is(err, analysis.ErrExtraction) {
		t.Errorf("corrupt image: expected ErrExtraction, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("tesseract should not run for a corrupt image, calls=%d", len(runner.calls))
	}
}

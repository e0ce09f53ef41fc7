// Package extract turns stored uploads into plain text.
//
//   - pdf        pdfcpu page content streams, page order, no OCR fallback
//   - docx, doc  word/document.xml paragraphs, one per line
//   - txt        verbatim UTF-8
//   - jpg, jpeg, png, gif  tesseract OCR
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
	"github.com/bryanwahyu/truthlens/internal/infra/executor/command"
)

// Config for OCR. Empty fields fall back to defaults in New.
type Config struct {
	Tesseract     string // binary name or absolute path; default "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
}

type Extractor struct {
	cfg    Config
	runner command.Runner
	log    *zap.Logger
}

func New(cfg Config, runner command.Runner, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = command.NewRunner(logger)
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Extractor{cfg: cfg, runner: runner, log: logger}
}

// Extract dispatches on the declared type (case-insensitive, leading dot allowed).
func (e *Extractor) Extract(ctx context.Context, path, fileType string) (string, error) {
	t := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
	e.log.Debug("extracting text", zap.String("path", path), zap.String("type", t))

	var (
		text string
		err  error
	)
	switch t {
	case "pdf":
		text, err = extractPDF(path)
	case "docx", "doc":
		text, err = extractDocx(path)
	case "txt":
		text, err = extractText(path)
	case "jpg", "jpeg", "png", "gif":
		text, err = e.extractImage(ctx, path)
	default:
		return "", fmt.Errorf("%w: %q", analysis.ErrUnsupportedType, fileType)
	}
	if err != nil {
		return "", err
	}

	e.log.Debug("extracted text", zap.String("type", t), zap.Int("chars", len([]rune(text))))
	return text, nil
}

func extractionError(kind string, err error) error {
	return fmt.Errorf("%w: %s: %v", analysis.ErrExtraction, kind, err)
}

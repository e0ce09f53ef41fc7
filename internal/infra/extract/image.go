package extract

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// extractImage runs `tesseract <file> stdout -l <lang>`. An image without text yields "".
func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	if err := checkImage(path); err != nil {
		return "", extractionError("decode image", err)
	}

	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", extractionError("tesseract", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// checkImage rejects files that are not a decodable jpeg/png/gif before OCR.
func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	return err
}

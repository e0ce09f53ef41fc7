package extract

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
)

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", extractionError("read txt", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", analysis.ErrDecode, path)
	}
	return string(data), nil
}

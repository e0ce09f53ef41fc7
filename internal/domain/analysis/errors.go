package analysis

import "errors"

var (
	// ErrExtraction indicates a document could not be parsed (corrupt PDF, malformed DOCX, OCR failure).
	ErrExtraction = errors.New("extraction failed")

	// ErrUnsupportedType indicates the declared file type has no extractor.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrDecode indicates a text file is not valid UTF-8.
	ErrDecode = errors.New("text is not valid utf-8")

	// ErrEmptyContent indicates a text analysis request without content.
	ErrEmptyContent = errors.New("content is required")
)

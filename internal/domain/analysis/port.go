package analysis

import "context"

// Extractor port (converts a stored file into plain text)
type Extractor interface {
	Extract(ctx context.Context, path, fileType string) (string, error)
}

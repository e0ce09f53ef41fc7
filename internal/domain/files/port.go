package files

import (
	"context"
	"io"
)

// Store port (interface untuk penyimpanan file upload)
type Store interface {
	// Save writes r to {id}{ext} and returns a local path the extractor can read.
	Save(ctx context.Context, id, filename string, r io.Reader) (string, error)
	// Resolve returns a local path for id, or ErrNotFound.
	Resolve(ctx context.Context, id string) (string, error)
	// Delete removes the file for id; false when nothing matched.
	Delete(ctx context.Context, id string) (bool, error)
	// Check reports whether the backend is usable.
	Check(ctx context.Context) error
}

// Releaser is implemented by stores whose Resolve materializes a remote file
// locally. Release drops that local copy and keeps the stored file.
type Releaser interface {
	Release(ctx context.Context, id string) error
}

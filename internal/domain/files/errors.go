package files

import "errors"

var (
	// ErrNotFound indicates no stored file matches the given id.
	ErrNotFound = errors.New("file not found")

	// ErrSizeExceeded indicates the upload is larger than the configured ceiling.
	ErrSizeExceeded = errors.New("file size exceeds maximum allowed")

	// ErrDisallowedType indicates the file extension is not in the allow-set.
	ErrDisallowedType = errors.New("file type not allowed")
)

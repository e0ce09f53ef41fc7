package files

import (
	"path/filepath"
	"strings"
)

// DefaultMaxSize is the upload ceiling (50 MiB).
const DefaultMaxSize int64 = 50 * 1024 * 1024

// AllowedExtensions is the fixed allow-set, lower-cased with the leading dot.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsAllowed reports whether filename carries an extension from AllowedExtensions.
func IsAllowed(filename string) bool {
	return AllowedExtensions[Ext(filename)]
}

// IsImage reports whether filename is one of the image types sent to the vision model.
func IsImage(filename string) bool {
	return imageExtensions[Ext(filename)]
}

// TypeOf returns the declared type tag (extension without the dot) for filename.
func TypeOf(filename string) string {
	return strings.TrimPrefix(Ext(filename), ".")
}

// StoredName builds the on-disk / object name for an upload.
func StoredName(id, filename string) string {
	return id + Ext(filename)
}

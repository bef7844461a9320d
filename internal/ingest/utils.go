package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
)

// AllowedExt checks if a file extension is in the allowed set (pdf/txt/json).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// IsOutput reports whether path is a result file written next to its source.
func IsOutput(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), constants.OutputSuffix)
}

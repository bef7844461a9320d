package constants

import (
	"path/filepath"
	"strings"
)

// Source formats accepted by the loader.
const (
	PDF   = "PDF"
	TEXT  = "TEXT"
	PAGES = "PAGES"
)

// FileTypes holds the source formats in the order they are reported.
var FileTypes = []string{PDF, TEXT, PAGES}

// AllowedExtensions holds the default extensions picked up by the loader and the watcher.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TEXT
	case "json":
		return PAGES
	default:
		return ""
	}
}

// OutputSuffix names the result file written for a processed report ("x.pdf" -> "x.cibil.json").
const OutputSuffix = ".cibil.json"

// OutputPath returns the result file path for source, inside dir when dir is set.
func OutputPath(source, dir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + OutputSuffix
	if dir == "" {
		return filepath.Join(filepath.Dir(source), base)
	}
	return filepath.Join(dir, base)
}

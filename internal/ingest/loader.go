// Package ingest turns report files into page records and discovers report files on disk.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
	"github.com/joseph-ayodele/cibil-aggregator/internal/pdftext"
)

// PDFSource extracts the pages of a PDF.
type PDFSource interface {
	Pages(ctx context.Context, path string) ([]entity.PageInput, error)
}

// Loader reads page records by file extension: .json page records, .txt form-feed
// separated pages, .pdf through the configured PDF source.
type Loader struct {
	pdf    PDFSource
	logger *slog.Logger
}

// NewLoader returns a Loader. pdf may be nil, in which case PDFs are rejected.
func NewLoader(pdf PDFSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{pdf: pdf, logger: logger}
}

// Pages implements core.PageSource.
func (l *Loader) Pages(ctx context.Context, path string) ([]entity.PageInput, error) {
	start := time.Now()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrInvalidInput, path)
	}
	format := constants.MapExtToFormat(filepath.Ext(path))
	l.logger.Debug("ingest.load.start", "path", path, "format", format, "size", humanize.Bytes(uint64(info.Size())))

	var pages []entity.PageInput
	switch format {
	case constants.PAGES:
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		pages, err = core.DecodePages(data)
	case constants.TEXT:
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		pages = pdftext.SplitPages(string(data), constants.MethodText)
	case constants.PDF:
		if l.pdf == nil {
			return nil, fmt.Errorf("%w: no PDF backend configured", common.ErrUnsupported)
		}
		pages, err = l.pdf.Pages(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		l.logger.Error("ingest.load.failed", "path", path, "error", err)
		return nil, err
	}

	l.logger.Info("ingest.load.ok",
		"path", path,
		"format", format,
		"pages", len(pages),
		"size", humanize.Bytes(uint64(info.Size())),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

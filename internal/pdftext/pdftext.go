// Package pdftext turns PDF files into per-page text for the aggregation pipeline.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// Backends.
const (
	BackendPdftotext = "pdftotext"
	BackendNative    = "native"
)

type Config struct {
	Backend   string // pdftotext | native; default pdftotext
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for OCR, default 300
	MaxPages      int // 0 = no limit
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendPdftotext
	}
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

// Option configures an Extractor or an Enhancer.
type Option func(*options)

type options struct {
	runner Runner
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(o *options) { o.runner = r }
}

func buildOptions(opts []Option) options {
	o := options{runner: execRunner{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Extractor reads the text of every page of a PDF.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)
	return &Extractor{cfg: cfg.withDefaults(), runner: o.runner, logger: logger}
}

// Pages returns one input record per PDF page. Pages without text that carry images are
// reported with the image-only extraction method.
func (e *Extractor) Pages(ctx context.Context, path string) ([]entity.PageInput, error) {
	var (
		pages []entity.PageInput
		err   error
	)
	switch e.cfg.Backend {
	case BackendNative:
		pages, err = e.nativePages(path)
	case BackendPdftotext:
		pages, err = e.pdftotextPages(ctx, path)
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", e.cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}

	info, ierr := Inspect(path)
	if ierr != nil {
		e.logger.Warn("pdf.inspect.failed", "path", path, "error", ierr)
	} else {
		markImageOnly(pages, info)
	}
	e.logger.Debug("pdf.pages.extracted", "path", path, "backend", e.cfg.Backend, "pages", len(pages))
	return pages, nil
}

func (e *Extractor) pdftotextPages(ctx context.Context, path string) ([]entity.PageInput, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return SplitPages(string(out), constants.MethodPdftotext), nil
}

func (e *Extractor) nativePages(path string) ([]entity.PageInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	n := r.NumPage()
	pages := make([]entity.PageInput, 0, n)
	for i := 1; i <= n; i++ {
		in := entity.PageInput{PageNumber: i, ExtractionMethod: constants.MethodNative}
		p := r.Page(i)
		if !p.V.IsNull() {
			txt, err := p.GetPlainText(nil)
			if err != nil {
				e.logger.Warn("pdf.page.text.failed", "path", path, "page", i, "error", err)
			}
			in.Text = txt
		}
		pages = append(pages, in)
	}
	return pages, nil
}

// SplitPages cuts form-feed separated text into pages. A trailing form feed does not
// start another page.
func SplitPages(text, method string) []entity.PageInput {
	parts := strings.Split(text, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]entity.PageInput, len(parts))
	for i, p := range parts {
		pages[i] = entity.PageInput{PageNumber: i + 1, Text: p, ExtractionMethod: method}
	}
	return pages
}

func markImageOnly(pages []entity.PageInput, info Info) {
	images := make(map[int]bool, len(info.ImagePages))
	for _, n := range info.ImagePages {
		images[n] = true
	}
	for i := range pages {
		if images[pages[i].PageNumber] && strings.TrimSpace(pages[i].Text) == "" {
			pages[i].ExtractionMethod = constants.MethodImageOnly
		}
	}
}

// DetectOCR reports whether the OCR toolchain is installed.
func DetectOCR(cfg Config) bool {
	cfg = cfg.withDefaults()
	for _, bin := range []string{cfg.Pdftoppm, cfg.Tesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

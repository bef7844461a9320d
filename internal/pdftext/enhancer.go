package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
)

// TesseractEnhancer rasterizes one PDF page with pdftoppm and reads it back with tesseract.
type TesseractEnhancer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractEnhancer(cfg Config, logger *slog.Logger, opts ...Option) *TesseractEnhancer {
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)
	return &TesseractEnhancer{cfg: cfg.withDefaults(), runner: o.runner, logger: logger}
}

// Method is the extraction method reported for enhanced pages.
func (t *TesseractEnhancer) Method() string { return constants.MethodOCR }

// Enhance returns the OCR text of page pageNumber of the PDF at path.
func (t *TesseractEnhancer) Enhance(ctx context.Context, path string, pageNumber int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cibil-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.logger.Warn("ocr.tmp.cleanup.failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	page := strconv.Itoa(pageNumber)
	// pdftoppm -r 300 -png -f N -l N <in.pdf> <tmp/page>
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm, t.logger,
		"-r", strconv.Itoa(t.cfg.DPI), "-png", "-f", page, "-l", page, path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm rendered no image for page %d", pageNumber)
	}

	args := []string{matches[0], "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

package server

import (
	"log/slog"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core"
	"github.com/joseph-ayodele/cibil-aggregator/internal/ingest"
	"github.com/joseph-ayodele/cibil-aggregator/internal/pdftext"
)

// PDFConfig maps the pdf configuration section onto the extractor settings.
func PDFConfig(cfg common.PDFConfig) pdftext.Config {
	return pdftext.Config{
		Backend:       cfg.Backend,
		Pdftotext:     cfg.Pdftotext,
		Pdftoppm:      cfg.Pdftoppm,
		Tesseract:     cfg.Tesseract,
		TesseractLang: cfg.TesseractLang,
		TessdataDir:   cfg.TessdataDir,
		DPI:           cfg.DPI,
		MaxPages:      cfg.MaxPages,
	}
}

// NewPipeline wires a processor reading .json, .txt and .pdf files. OCR enhancement is
// attached per the configured mode: "auto" only when the toolchain is installed.
func NewPipeline(cfg *common.Config, logger *slog.Logger) *core.Processor {
	if logger == nil {
		logger = slog.Default()
	}
	pcfg := PDFConfig(cfg.PDF)
	loader := ingest.NewLoader(pdftext.NewExtractor(pcfg, logger), logger)
	opts := []core.Option{
		core.WithWorkers(cfg.Pipeline.Workers),
		core.WithPageSource(loader),
		core.WithOCRThreshold(cfg.Pipeline.OCRThreshold),
	}

	switch cfg.Pipeline.OCR {
	case common.OCROff:
		logger.Info("ocr disabled")
	case common.OCROn:
		if !pdftext.DetectOCR(pcfg) {
			logger.Warn("ocr forced on but toolchain not found", "pdftoppm", pcfg.Pdftoppm, "tesseract", pcfg.Tesseract)
		}
		opts = append(opts, core.WithEnhancer(pdftext.NewTesseractEnhancer(pcfg, logger)))
	default:
		if pdftext.DetectOCR(pcfg) {
			opts = append(opts, core.WithEnhancer(pdftext.NewTesseractEnhancer(pcfg, logger)))
			logger.Info("ocr available")
		} else {
			logger.Info("ocr unavailable, low confidence pages are kept as extracted")
		}
	}
	return core.NewProcessor(logger, opts...)
}

package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/account"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/aggregate"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/page"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/section"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/structure"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// PageSource reads the pages of a report file.
type PageSource interface {
	Pages(ctx context.Context, path string) ([]entity.PageInput, error)
}

// Enhancer re-reads one page of a PDF when its extracted text scored poorly.
type Enhancer interface {
	Enhance(ctx context.Context, path string, pageNumber int) (string, error)
	Method() string
}

// Processor runs the aggregation pipeline: page analysis, section classification,
// account extraction, consolidation and the document-wide summaries.
type Processor struct {
	logger       *slog.Logger
	workers      int
	clock        func() time.Time
	source       PageSource
	enhancer     Enhancer
	ocrThreshold float64
}

type Option func(*Processor)

// WithWorkers bounds per-page parallelism; 1 runs pages sequentially.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.clock = now
		}
	}
}

func WithPageSource(src PageSource) Option {
	return func(p *Processor) { p.source = src }
}

// WithEnhancer enables OCR enhancement. Pass nil when the OCR toolchain is unavailable.
func WithEnhancer(e Enhancer) Option {
	return func(p *Processor) { p.enhancer = e }
}

func WithOCRThreshold(t float64) Option {
	return func(p *Processor) {
		if t > 0 && t <= 1 {
			p.ocrThreshold = t
		}
	}
}

func NewProcessor(logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:       logger,
		workers:      1,
		clock:        time.Now,
		ocrThreshold: 0.7,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// run holds the intermediate products of one aggregation.
type run struct {
	pages    []entity.PageRecord
	sections []entity.Section
	report   *entity.AggregatedReport
}

// Aggregate folds page records into one report. Either the whole report or an error
// is returned; a *StageError names the failed stage and page.
func (p *Processor) Aggregate(ctx context.Context, inputs []entity.PageInput) (*entity.AggregatedReport, error) {
	r, err := p.run(ctx, "", inputs)
	if err != nil {
		return nil, err
	}
	return r.report, nil
}

// Process reads path through the configured page source and builds the full result.
func (p *Processor) Process(ctx context.Context, path string) (*entity.ProcessingResult, error) {
	if p.source == nil {
		return nil, fmt.Errorf("%w: no page source configured", common.ErrUnsupported)
	}
	inputs, err := p.source.Pages(ctx, path)
	if err != nil {
		p.logger.Error("processor.pages.failed", "path", path, "error", err)
		return nil, common.WrapError(err, "read pages")
	}
	return p.ProcessPages(ctx, path, inputs)
}

// ProcessPages builds the full result for already extracted pages. source is the file
// the pages came from; OCR enhancement only applies when it is a PDF.
func (p *Processor) ProcessPages(ctx context.Context, source string, inputs []entity.PageInput) (*entity.ProcessingResult, error) {
	r, err := p.run(ctx, source, inputs)
	if err != nil {
		return nil, err
	}
	legacy := structure.Legacy(r.report)
	quality := structure.Quality(r.pages, legacy)
	summaries := make([]entity.PageSummary, len(r.pages))
	for i, rec := range r.pages {
		summaries[i] = page.Summary(rec)
	}
	return &entity.ProcessingResult{
		ReportType:        constants.ReportKind,
		ProcessingMethod:  constants.ProcessingMethod,
		PagesData:         summaries,
		ReportStructure:   structure.Analyze(r.pages),
		AggregatedData:    r.report,
		ExtractionQuality: quality,
		Recommendations:   structure.Recommendations(r.pages, quality),
		Legacy:            legacy,
	}, nil
}

func (p *Processor) run(ctx context.Context, source string, inputs []entity.PageInput) (*run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidatePages(inputs); err != nil {
		return nil, err
	}

	// A caller such as the worker queue may already have named the run.
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.New().String()
	}
	logger := p.logger.With("run_id", runID)
	ctx = common.WithRunID(common.WithLogger(ctx, logger), runID)
	start := time.Now()
	logger.Info("aggregate.start", "pages", len(inputs), "source", source, "workers", p.workers)

	n := len(inputs)
	records := make([]entity.PageRecord, n)
	perPage := make([][]entity.Section, n)
	err := p.each(n, func(i int) error {
		return guard(StageAnalyze, i, inputs[i].PageNumber, func() {
			records[i] = p.analyze(ctx, source, inputs[i])
			perPage[i] = section.ClassifyPage(records[i])
		})
	})
	if err != nil {
		logger.Error("aggregate.failed", "error", err)
		return nil, err
	}

	var sections []entity.Section
	for _, s := range perPage {
		sections = append(sections, s...)
	}
	logger.Debug("aggregate.pages.analyzed", "pages", n, "sections", len(sections))

	fromSections := account.UseSections(sections)
	candidates := make([][]entity.AccountRecord, n)
	err = p.each(n, func(i int) error {
		return guard(StageExtract, i, records[i].PageNumber, func() {
			candidates[i] = account.Candidates(records[i], perPage[i], fromSections)
		})
	})
	if err != nil {
		logger.Error("aggregate.failed", "error", err)
		return nil, err
	}

	var (
		accounts []entity.AccountRecord
		report   *entity.AggregatedReport
	)
	if err := guard(StageEnrich, -1, 0, func() {
		accounts = account.Enrich(account.Merge(candidates...), sections, records)
	}); err != nil {
		logger.Error("aggregate.failed", "error", err)
		return nil, err
	}
	if err := guard(StageAggregate, -1, 0, func() {
		report = aggregate.Report(records, sections, accounts, p.clock())
	}); err != nil {
		logger.Error("aggregate.failed", "error", err)
		return nil, err
	}

	logger.Info("aggregate.done",
		"pages", n,
		"sections", len(sections),
		"accounts", len(accounts),
		"from_sections", fromSections,
		"quality", report.DataQualityMetrics.OverallAggregationQuality,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &run{pages: records, sections: sections, report: report}, nil
}

// analyze normalizes one page and, when it scores below the OCR threshold, asks the
// enhancer for a better rendition.
func (p *Processor) analyze(ctx context.Context, source string, in entity.PageInput) entity.PageRecord {
	rec := page.Analyze(in)
	if p.enhancer == nil || rec.Confidence >= p.ocrThreshold || !isPDF(source) {
		return rec
	}
	logger := common.LoggerFromContext(ctx, p.logger)
	txt, err := p.enhancer.Enhance(ctx, source, rec.PageNumber)
	if err != nil {
		logger.Warn("processor.ocr.failed", "page", rec.PageNumber, "error", err)
		return rec
	}
	enhanced, ok := page.Enhanced(rec, txt, p.enhancer.Method())
	if !ok {
		logger.Debug("processor.ocr.kept_original", "page", rec.PageNumber)
		return rec
	}
	logger.Info("processor.ocr.enhanced",
		"page", rec.PageNumber,
		"confidence_before", rec.Confidence,
		"confidence_after", enhanced.Confidence,
	)
	return enhanced
}

// each runs fn for every index with at most p.workers in flight. Results are written
// by index, so callers see them in input order regardless of completion order.
func (p *Processor) each(n int, fn func(i int) error) error {
	if p.workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// guard turns a panic inside a stage into a *StageError wrapping common.ErrInternal.
func guard(stage string, index, pageNumber int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StageError{
				Stage:      stage,
				Index:      index,
				PageNumber: pageNumber,
				Err:        fmt.Errorf("%w: panic: %v", common.ErrInternal, r),
			}
		}
	}()
	fn()
	return nil
}

func isPDF(path string) bool {
	return path != "" && constants.MapExtToFormat(filepath.Ext(path)) == constants.PDF
}

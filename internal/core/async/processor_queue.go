package async

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	jobs "github.com/joseph-ayodele/cibil-aggregator/internal/async"
	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
	"github.com/joseph-ayodele/cibil-aggregator/internal/export"
)

// FileProcessor builds the processing result of one report file.
type FileProcessor interface {
	Process(ctx context.Context, path string) (*entity.ProcessingResult, error)
}

// Store persists processing results.
type Store interface {
	Save(ctx context.Context, source string, result *entity.ProcessingResult) (uuid.UUID, error)
}

// Outcome is reported for every finished job.
type Outcome struct {
	Job      jobs.Job
	ReportID uuid.UUID // uuid.Nil when no store is configured
	Output   string    // result file, "" when writing is disabled
	Err      error
}

// ProcessorQueue processes report files on a bounded worker pool. Each job is processed,
// stored when a store is set, and written as JSON next to its source (or to the output dir).
type ProcessorQueue struct {
	proc      FileProcessor
	store     Store
	logger    *slog.Logger
	workers   int
	timeout   time.Duration
	outputDir string
	noOutput  bool
	onDone    func(Outcome)

	ch   chan jobs.Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

var _ jobs.Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan jobs.Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithStore(s Store) Option {
	return func(q *ProcessorQueue) { q.store = s }
}

// WithOutputDir writes result files into dir instead of next to their sources.
func WithOutputDir(dir string) Option {
	return func(q *ProcessorQueue) { q.outputDir = dir }
}

// WithoutOutput disables result files.
func WithoutOutput() Option {
	return func(q *ProcessorQueue) { q.noOutput = true }
}

// WithOnDone registers a callback run by the worker after each job.
func WithOnDone(fn func(Outcome)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan jobs.Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := common.WithTimeout(common.WithRunID(context.Background(), job.ID.String()), q.timeout)
					out := q.handle(ctx, job)
					cancel()

					if out.Err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "job_id", job.ID, "path", job.Path, "error", out.Err)
					} else {
						q.logger.Info("processed file successfully", "worker_id", workerID, "job_id", job.ID, "path", job.Path, "report_id", out.ReportID, "output", out.Output)
					}
					if q.onDone != nil {
						q.onDone(out)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) handle(ctx context.Context, job jobs.Job) Outcome {
	out := Outcome{Job: job}
	res, err := q.proc.Process(ctx, job.Path)
	if err != nil {
		out.Err = err
		return out
	}
	if q.store != nil {
		if out.ReportID, err = q.store.Save(ctx, job.Path, res); err != nil {
			out.Err = fmt.Errorf("store: %w", err)
			return out
		}
	}
	if !q.noOutput {
		out.Output = constants.OutputPath(job.Path, q.outputDir)
		if err := writeResult(out.Output, res); err != nil {
			out.Err = err
		}
	}
	return out
}

// writeResult writes through a temp file so readers never see a partial result.
func writeResult(path string, res *entity.ProcessingResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cibil-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := export.WriteJSON(tmp, res); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (q *ProcessorQueue) Enqueue(ctx context.Context, job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID, "path", job.Path)
		return jobs.ErrClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued file for processing", "job_id", job.ID, "path", job.Path)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "job_id", job.ID, "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// Pump enqueues paths until both channels close, logging errors from errs.
// It is the bridge between ingest.StartWatcher and a queue.
func Pump(ctx context.Context, q jobs.Queue, paths <-chan string, errs <-chan error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if err := q.Enqueue(ctx, jobs.NewJob(p)); err != nil {
				logger.Warn("watch.enqueue.failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("watch.error", "error", err)
		}
	}
}

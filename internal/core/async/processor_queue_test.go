package async

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	jobs "github.com/joseph-ayodele/cibil-aggregator/internal/async"
	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
	"github.com/joseph-ayodele/cibil-aggregator/internal/ingest"
)

type memStore struct {
	mu      sync.Mutex
	sources []string
}

func (m *memStore) Save(_ context.Context, source string, _ *entity.ProcessingResult) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
	return uuid.New(), nil
}

func collect() (func(Outcome), func() []Outcome) {
	var (
		mu  sync.Mutex
		out []Outcome
	)
	return func(o Outcome) {
			mu.Lock()
			out = append(out, o)
			mu.Unlock()
		}, func() []Outcome {
			mu.Lock()
			defer mu.Unlock()
			return out
		}
}

func TestProcessorQueue(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	good := filepath.Join(dir, "report.txt")
	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(good, []byte("CIBIL Score: 742\nAccount No: AB1234567890 Bank: HDFC Bank"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"nope": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	proc := core.NewProcessor(nil, core.WithPageSource(ingest.NewLoader(nil, nil)))
	store := &memStore{}
	onDone, outcomes := collect()
	q := NewProcessorQueue(proc, nil,
		WithWorkers(2),
		WithQueueSize(1),
		WithProcessTimeout(time.Minute),
		WithStore(store),
		WithOutputDir(outDir),
		WithOnDone(onDone),
	)

	ctx := context.Background()
	for _, p := range []string{good, bad} {
		if err := q.Enqueue(ctx, jobs.NewJob(p)); err != nil {
			t.Fatalf("Enqueue(%s): %v", p, err)
		}
	}
	q.Shutdown(ctx)

	if err := q.Enqueue(ctx, jobs.NewJob(good)); !errors.Is(err, jobs.ErrClosed) {
		t.Errorf("Enqueue after shutdown: err = %v, want ErrClosed", err)
	}

	byPath := map[string]Outcome{}
	for _, o := range outcomes() {
		byPath[o.Job.Path] = o
	}
	if len(byPath) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(byPath))
	}

	ok := byPath[good]
	if ok.Err != nil || ok.ReportID == uuid.Nil {
		t.Fatalf("good outcome = %+v", ok)
	}
	if want := filepath.Join(outDir, "report.cibil.json"); ok.Output != want {
		t.Errorf("output = %q, want %q", ok.Output, want)
	}
	data, err := os.ReadFile(ok.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var res entity.ProcessingResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(res.AggregatedData.AllAccounts) != 1 || res.AggregatedData.AllAccounts[0].AccountNumber != "AB1234567890" {
		t.Errorf("accounts = %+v", res.AggregatedData.AllAccounts)
	}

	if byPath[bad].Err == nil {
		t.Error("broken input should fail")
	}
	if len(store.sources) != 1 || store.sources[0] != good {
		t.Errorf("stored = %v", store.sources)
	}
}

type runIDProcessor struct {
	mu   sync.Mutex
	seen map[string]string
}

func (p *runIDProcessor) Process(ctx context.Context, path string) (*entity.ProcessingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[path] = common.RunIDFromContext(ctx)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("no deadline")
	}
	return &entity.ProcessingResult{}, nil
}

func TestProcessorQueueNamesRunsAfterJobs(t *testing.T) {
	proc := &runIDProcessor{seen: map[string]string{}}
	onDone, outcomes := collect()
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithoutOutput(), WithOnDone(onDone))

	job := jobs.NewJob("a.pdf")
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	q.Shutdown(context.Background())

	if got := outcomes(); len(got) != 1 || got[0].Err != nil {
		t.Fatalf("outcomes = %+v", got)
	}
	if got := proc.seen["a.pdf"]; got != job.ID.String() {
		t.Errorf("run id = %q, want job id %s", got, job.ID)
	}
}

func TestProcessorQueueShutdownIsIdempotent(t *testing.T) {
	q := NewProcessorQueue(core.NewProcessor(nil), nil, WithWorkers(1), WithoutOutput())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
}

type recordingQueue struct {
	paths []string
}

func (r *recordingQueue) Enqueue(_ context.Context, job jobs.Job) error {
	r.paths = append(r.paths, job.Path)
	return nil
}

func (r *recordingQueue) Shutdown(context.Context) {}

func TestPumpDrainsUntilChannelsClose(t *testing.T) {
	paths := make(chan string, 2)
	errs := make(chan error, 1)
	paths <- "a.pdf"
	paths <- "b.json"
	errs <- errors.New("watch failed")
	close(paths)
	close(errs)

	q := &recordingQueue{}
	Pump(context.Background(), q, paths, errs, nil)
	if len(q.paths) != 2 || q.paths[0] != "a.pdf" || q.paths[1] != "b.json" {
		t.Errorf("enqueued %v, want [a.pdf b.json]", q.paths)
	}
}

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type fakePDF struct {
	pages []entity.PageInput
	paths []string
}

func (f *fakePDF) Pages(_ context.Context, path string) ([]entity.PageInput, error) {
	f.paths = append(f.paths, path)
	return f.pages, nil
}

func TestLoaderFormats(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "pages.json")
	txtPath := filepath.Join(dir, "report.txt")
	pdfPath := filepath.Join(dir, "report.pdf")
	writeFile(t, jsonPath, `[{"page_number":1,"text":"CIBIL Score: 742"}]`)
	writeFile(t, txtPath, "first page\fsecond page\f")
	writeFile(t, pdfPath, "%PDF-1.4")

	pdf := &fakePDF{pages: []entity.PageInput{{PageNumber: 1, Text: "from pdf", ExtractionMethod: "pdftotext"}}}
	l := NewLoader(pdf, nil)
	ctx := context.Background()

	tests := []struct {
		path string
		want []entity.PageInput
	}{
		{jsonPath, []entity.PageInput{{PageNumber: 1, Text: "CIBIL Score: 742"}}},
		{txtPath, []entity.PageInput{
			{PageNumber: 1, Text: "first page", ExtractionMethod: "text"},
			{PageNumber: 2, Text: "second page", ExtractionMethod: "text"},
		}},
		{pdfPath, pdf.pages},
	}
	for _, tt := range tests {
		t.Run(filepath.Ext(tt.path), func(t *testing.T) {
			got, err := l.Pages(ctx, tt.path)
			if err != nil {
				t.Fatalf("Pages: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pages mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if diff := cmp.Diff([]string{pdfPath}, pdf.paths); diff != "" {
		t.Errorf("pdf source calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderRejects(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "scan.png")
	pdf := filepath.Join(dir, "report.pdf")
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, img, "png")
	writeFile(t, pdf, "%PDF")
	writeFile(t, bad, `{"page_number": 1}`)
	l := NewLoader(nil, nil)
	ctx := context.Background()

	if _, err := l.Pages(ctx, img); !errors.Is(err, common.ErrUnsupported) {
		t.Errorf("png: err = %v, want ErrUnsupported", err)
	}
	if _, err := l.Pages(ctx, pdf); !errors.Is(err, common.ErrUnsupported) {
		t.Errorf("pdf without backend: err = %v, want ErrUnsupported", err)
	}
	if _, err := l.Pages(ctx, bad); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("bad json: err = %v, want ErrInvalidInput", err)
	}
	if _, err := l.Pages(ctx, dir); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("directory: err = %v, want ErrInvalidInput", err)
	}
	if _, err := l.Pages(ctx, filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want ErrNotExist", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		"b.pdf",
		"a.json",
		"a.cibil.json",
		"notes.md",
		"nested/c.txt",
		".hidden/d.pdf",
		".e.pdf",
	} {
		writeFile(t, filepath.Join(dir, p), "x")
	}

	got, stats, err := Discover(dir, true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "nested", "c.txt"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if stats.Matched != 3 {
		t.Errorf("stats = %+v", stats)
	}

	all, _, err := Discover(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("without hidden filtering got %v", all)
	}

	if _, _, err := Discover("", false); err == nil {
		t.Error("expected an error for an empty root")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.json")
	writeFile(t, existing, "[]")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	next := func() string {
		t.Helper()
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a watch event")
			return ""
		}
	}

	if got := next(); got != existing {
		t.Errorf("initial scan emitted %q, want %q", got, existing)
	}

	writeFile(t, filepath.Join(dir, "ignored.md"), "x")
	writeFile(t, filepath.Join(dir, "ignored.cibil.json"), "{}")
	created := filepath.Join(dir, "new.txt")
	writeFile(t, created, "CIBIL")
	if got := next(); got != created {
		t.Errorf("emitted %q, want %q", got, created)
	}

	cancel()
	for range events {
	}
}

func TestWatcherNeedsRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Error("expected an error without roots")
	}
}

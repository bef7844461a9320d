package pdftext

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stdout map[string]string
	fail   map[string]bool
	// onRun lets a fake command produce files the caller expects.
	onRun func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.fail[name] {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return []byte(f.stdout[name]), nil, nil
}

func TestPdftotextPages(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{"pdftotext": "CIBIL page one\fpage two\f"}}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	got, err := e.Pages(context.Background(), "missing.pdf")
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	want := []entity.PageInput{
		{PageNumber: 1, Text: "CIBIL page one", ExtractionMethod: "pdftotext"},
		{PageNumber: 2, Text: "page two", ExtractionMethod: "pdftotext"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	wantArgs := []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "missing.pdf", "-"}
	if len(r.calls) != 1 || r.calls[0].name != "pdftotext" {
		t.Fatalf("calls = %+v", r.calls)
	}
	if diff := cmp.Diff(wantArgs, r.calls[0].args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPdftotextMaxPages(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{"pdftotext": "a\fb\fc"}}
	e := NewExtractor(Config{MaxPages: 2}, nil, WithRunner(r))
	got, err := e.Pages(context.Background(), "x.pdf")
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d pages, want 2", len(got))
	}
}

func TestPdftotextFailure(t *testing.T) {
	r := &fakeRunner{fail: map[string]bool{"pdftotext": true}}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	if _, err := e.Pages(context.Background(), "x.pdf"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestUnknownBackend(t *testing.T) {
	e := NewExtractor(Config{Backend: "magic"}, nil, WithRunner(&fakeRunner{}))
	if _, err := e.Pages(context.Background(), "x.pdf"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"one", 1},
		{"one\f", 1},
		{"one\f\ftwo", 3},
	}
	for _, tt := range tests {
		if got := SplitPages(tt.in, "text"); len(got) != tt.want {
			t.Errorf("SplitPages(%q) gave %d pages, want %d", tt.in, len(got), tt.want)
		}
	}
}

func TestMarkImageOnly(t *testing.T) {
	pages := []entity.PageInput{
		{PageNumber: 1, Text: "", ExtractionMethod: "pdftotext"},
		{PageNumber: 2, Text: "text", ExtractionMethod: "pdftotext"},
		{PageNumber: 3, Text: " ", ExtractionMethod: "pdftotext"},
	}
	markImageOnly(pages, Info{PageCount: 3, ImagePages: []int{1, 2}})
	got := []string{pages[0].ExtractionMethod, pages[1].ExtractionMethod, pages[2].ExtractionMethod}
	if diff := cmp.Diff([]string{"image-only", "pdftotext", "pdftotext"}, got); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}
}

func TestTesseractEnhancer(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{"tesseract": "CIBIL Score: 742"}}
	r.onRun = func(name string, args []string) {
		if name != "pdftoppm" {
			return
		}
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-3.png", []byte("png"), 0o600); err != nil {
			t.Errorf("write fake image: %v", err)
		}
	}
	enh := NewTesseractEnhancer(Config{TessdataDir: "/td"}, nil, WithRunner(r))

	got, err := enh.Enhance(context.Background(), "report.pdf", 3)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if got != "CIBIL Score: 742" {
		t.Errorf("text = %q", got)
	}
	if len(r.calls) != 2 {
		t.Fatalf("calls = %+v", r.calls)
	}
	pp := r.calls[0].args
	if diff := cmp.Diff([]string{"-r", "300", "-png", "-f", "3", "-l", "3", "report.pdf"}, pp[:len(pp)-1]); diff != "" {
		t.Errorf("pdftoppm args mismatch (-want +got):\n%s", diff)
	}
	ts := r.calls[1].args
	if filepath.Base(ts[0]) != "page-3.png" || ts[1] != "stdout" || ts[len(ts)-1] != "/td" {
		t.Errorf("tesseract args = %v", ts)
	}
	if enh.Method() != "pdf-ocr" {
		t.Errorf("method = %q", enh.Method())
	}
}

func TestTesseractEnhancerNoImage(t *testing.T) {
	r := &fakeRunner{}
	enh := NewTesseractEnhancer(Config{}, nil, WithRunner(r))
	if _, err := enh.Enhance(context.Background(), "report.pdf", 1); err == nil {
		t.Fatal("expected an error when no image is rendered")
	}
}

package engine

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

type stubScanner struct {
	pattern string
}

func (s stubScanner) String() string { return "StubScanner" }

func (s stubScanner) ScanFile(entry scanner.Entry) []scanner.Result {
	if filepath.Base(entry.Path) == s.pattern {
		return []scanner.Result{scanner.Ok(finding.Finding{Kind: finding.KindFilename, FilePath: entry.Path, Pattern: s.pattern})}
	}
	return nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
}

func TestRunScansEveryRegularFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt", "target.exe")

	results := drain(t, Run(Config{
		Root:     dir,
		Scanners: []scanner.Scanner{stubScanner{pattern: "target.exe"}},
		Workers:  2,
	}))

	if len(results) != 3 {
		t.Fatalf("expected one result per file, got %d", len(results))
	}

	matched := 0
	for _, r := range results {
		matched += len(r.Findings)
	}
	if matched != 1 {
		t.Errorf("expected exactly one finding across all files, got %d", matched)
	}
}

func TestRunHonorsExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.txt", "skip.tmp")

	results := drain(t, Run(Config{
		Root:     dir,
		Scanners: nil,
		Workers:  1,
		Exclude:  regexp.MustCompile(`\.tmp$`),
	}))

	if len(results) != 1 {
		t.Fatalf("expected excluded file to be skipped, got %d results", len(results))
	}
	if filepath.Base(results[0].Path) != "keep.txt" {
		t.Errorf("expected keep.txt to survive, got %q", results[0].Path)
	}
}

func drain(t *testing.T, ch <-chan *scanner.FileResult) []*scanner.FileResult {
	t.Helper()
	var out []*scanner.FileResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

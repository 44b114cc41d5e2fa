package filename

import (
	"os"
	"testing"

	"github.com/melatonein5/dionysos/src/scanner"
)

func entryFor(t *testing.T, path string) scanner.Entry {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		// the scanner never stats the file itself, a synthetic entry is fine
		return scanner.Entry{Path: path}
	}
	return scanner.Entry{Path: path, Info: info}
}

func TestScanFileEmitsOnePerMatchingPattern(t *testing.T) {
	s, err := New([]string{`^sample1`, `\.txt$`, `nomatch`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results := s.ScanFile(entryFor(t, "/data/sample1.txt"))
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].Finding.Pattern != `^sample1` {
		t.Errorf("expected registration order, got %q first", results[0].Finding.Pattern)
	}
}

func TestScanFileNoMatches(t *testing.T) {
	s, err := New([]string{`^nope$`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if results := s.ScanFile(entryFor(t, "/data/sample1.txt")); len(results) != 0 {
		t.Errorf("expected no matches, got %d", len(results))
	}
}

func TestNewInvalidPattern(t *testing.T) {
	if _, err := New([]string{"("}); err == nil {
		t.Error("expected compile error for invalid regex")
	}
}

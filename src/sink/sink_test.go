package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

func TestWriteCsvDedupesIdenticalRows(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, FormatCSV, false)

	f := finding.Finding{Kind: finding.KindFilename, FilePath: "/tmp/a.exe", Pattern: `a\.exe$`}
	result := scanner.NewFileResult("/tmp/a.exe")
	result.Findings = []finding.Finding{f, f}

	if err := s.Write(result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	body := buf.String()
	count := strings.Count(body, `a\.exe$`)
	if count != 1 {
		t.Errorf("expected the duplicate finding to collapse to one row, found %d occurrences", count)
	}
}

func TestWriteCsvHeaderWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, FormatCSV, false)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if strings.Count(buf.String(), "scanner_name") != 1 {
		t.Errorf("expected exactly one header line")
	}
}

func TestWriteTextEmitsOneLinePerFinding(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, FormatText, false)

	result := scanner.NewFileResult("/tmp/a.exe")
	result.Findings = []finding.Finding{
		{Kind: finding.KindFilename, FilePath: "/tmp/a.exe", Pattern: `a\.exe$`},
		{Kind: finding.KindLevenshtein, FilePath: "/tmp/a.exe", Pattern: "explorer.exe"},
	}

	if err := s.Write(result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestWriteEmptyResultWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, FormatText, false)
	if err := s.Write(scanner.NewFileResult("/tmp/clean.txt")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for a result with no findings, got %q", buf.String())
	}
}

// Package sink implements the Dionysos output destination (§4.7): a
// single thread-safe writer that every result-draining goroutine calls
// into, applying CSV's dedup semantics and the display_strings flag.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

// Format selects the rendering the sink applies to each finding (§6).
type Format int

const (
	FormatText Format = iota
	FormatCSV
	FormatJSON
)

// Sink serializes FileResults to an underlying writer. Only the mutex
// guarding the destination and the CSV dedup set are shared; the
// serialization work itself (building the line text) happens outside the
// lock, so the lock is only ever held for one CSV dedup-set check or for
// the duration of writing one FileResult's lines.
type Sink struct {
	mu             sync.Mutex
	w              *bufio.Writer
	format         Format
	displayStrings bool
	seen           map[finding.CsvLine]struct{}
}

// New builds a Sink writing format-rendered findings to w.
// displayStrings controls whether YARA match-string detail is rendered,
// the Go-idiomatic, value-carried analogue of the original process-wide
// flag (§4.7).
func New(w io.Writer, format Format, displayStrings bool) *Sink {
	s := &Sink{
		w:              bufio.NewWriter(w),
		format:         format,
		displayStrings: displayStrings,
	}
	if format == FormatCSV {
		s.seen = make(map[finding.CsvLine]struct{})
		s.mu.Lock()
		fmt.Fprintln(s.w, `"scanner_name","rule_name","found_in_file","details"`)
		s.mu.Unlock()
	}
	return s
}

// Write renders every finding in result to the destination; the
// result's scan errors are not written. It is safe to call concurrently
// from multiple goroutines.
func (s *Sink) Write(result *scanner.FileResult) error {
	lines := make([]string, 0, len(result.Findings))

	for _, f := range result.Findings {
		switch s.format {
		case FormatCSV:
			for _, line := range f.CsvLines(s.displayStrings) {
				if !s.markSeen(line) {
					lines = append(lines, line.Render())
				}
			}
		case FormatJSON:
			b, err := f.JSONLine(s.displayStrings)
			if err != nil {
				return fmt.Errorf("unable to render finding as json: %w", err)
			}
			lines = append(lines, string(b))
		default:
			lines = append(lines, strings.TrimSuffix(f.Text(s.displayStrings), "\n"))
		}
	}

	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		if _, err := fmt.Fprintln(s.w, l); err != nil {
			return fmt.Errorf("unable to write finding for %q: %w", result.Path, err)
		}
	}
	return nil
}

// markSeen records line in the dedup set and reports whether it had
// already been seen before this call.
func (s *Sink) markSeen(line finding.CsvLine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.seen[line]
	if !existed {
		s.seen[line] = struct{}{}
	}
	return existed
}

// Flush pushes any buffered output to the underlying writer.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

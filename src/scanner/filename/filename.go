// Package filename implements the Dionysos filename scanner (§4.2): a
// pre-compiled list of regexes tested against each file's basename.
package filename

import (
	"path/filepath"
	"regexp"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

// Scanner holds the pre-compiled pattern list. Patterns are tested in
// registration order, and findings are emitted in that same order
// (§4.2, §5(i)).
type Scanner struct {
	patterns []*regexp.Regexp
}

// New compiles every pattern; a single invalid pattern is a
// configuration error and is fatal at startup (§7).
func New(patterns []string) (*Scanner, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Scanner{patterns: compiled}, nil
}

func (s *Scanner) String() string { return "FilenameScanner" }

// ScanFile tests every pattern against the basename, preferring the
// already-UTF-8 Go string form filepath.Base gives us (Go strings are
// not guaranteed valid UTF-8, but since the entry path came from the
// filesystem walk as a Go string already, there is no separate
// "lossy fallback" step to perform — unlike Rust's OsStr, Go paths are
// just bytes-as-string from the start).
func (s *Scanner) ScanFile(entry scanner.Entry) []scanner.Result {
	base := filepath.Base(entry.Path)

	var results []scanner.Result
	for _, re := range s.patterns {
		if re.MatchString(base) {
			results = append(results, scanner.Ok(finding.Finding{
				Kind:     finding.KindFilename,
				FilePath: entry.Path,
				Pattern:  re.String(),
			}))
		}
	}
	return results
}

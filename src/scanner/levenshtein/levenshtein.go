// Package levenshtein implements the Dionysos Levenshtein scanner
// (§4.3): a fixed well-known-process-name table checked against each
// file's basename at edit distance exactly one.
package levenshtein

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

// wellKnownNames is the fixed table from §4.3.
var wellKnownNames = []string{
	"svchost.exe",
	"explorer.exe",
	"iexplore.exe",
	"lsass.exe",
	"chrome.exe",
	"csrss.exe",
	"firefox.exe",
	"winlogon.exe",
}

// Scanner carries no configuration; the well-known table is fixed.
type Scanner struct{}

// New returns a ready-to-use Scanner.
func New() *Scanner { return &Scanner{} }

func (s *Scanner) String() string { return "LevenshteinScanner" }

// ScanFile emits one LevenshteinMatch per table entry at distance 1
// from the basename, in table order (§4.3, §5(i)).
func (s *Scanner) ScanFile(entry scanner.Entry) []scanner.Result {
	base := filepath.Base(entry.Path)

	var results []scanner.Result
	for _, name := range wellKnownNames {
		if DistanceOne(base, name) {
			results = append(results, scanner.Ok(finding.Finding{
				Kind:     finding.KindLevenshtein,
				FilePath: entry.Path,
				Pattern:  name,
			}))
		}
	}
	return results
}

// DistanceOne reports whether a and b are exactly one single-code-point
// edit apart. Equal strings are rejected (distance 0 does not count),
// and the cheap length pre-check from §4.3's algorithm contract short
// circuits before the real distance computation — which is delegated to
// go-edlib's LevenshteinDistance rather than re-implemented by hand,
// since edlib already runs code-point-aware single-row DP internally.
func DistanceOne(a, b string) bool {
	if a == b {
		return false
	}

	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	diff := lenA - lenB
	if diff < 0 {
		diff = -diff
	}
	if diff > 1 {
		return false
	}

	return edlib.LevenshteinDistance(a, b) == 1
}

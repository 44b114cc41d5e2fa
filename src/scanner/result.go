package scanner

import "github.com/melatonein5/dionysos/src/finding"

// FileResult is one per scanned file: a path plus an append-only
// ordered sequence of findings (§3). It is created by the worker that
// picks the path off the queue, mutated only by that worker, handed to
// the sink, then discarded — there is no shared mutation across
// goroutines, so no internal locking is needed (unlike the Rust source,
// which wraps ScannerResult's Vec in a Mutex only because its consumer
// threads borrow &Arc<ScannerResult> concurrently; the Go engine instead
// gives each file to exactly one worker for its entire lifetime).
type FileResult struct {
	Path     string
	Findings []finding.Finding
	Errors   []error
}

// NewFileResult creates an empty result for path.
func NewFileResult(path string) *FileResult {
	return &FileResult{Path: path}
}

// Add appends a scanner's results in order, splitting findings from
// errors but preserving each list's relative order (§5(i)).
func (r *FileResult) Add(results []Result) {
	for _, res := range results {
		if res.Err != nil {
			r.Errors = append(r.Errors, res.Err)
			continue
		}
		r.Findings = append(r.Findings, res.Finding)
	}
}

// HasFindings reports whether this result carries anything worth
// rendering, so the sink can suppress empty results.
func (r *FileResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// Package scanner defines the polymorphic scanner contract (§3, §4, §9)
// every concrete inspector (filename, levenshtein, hash, yara)
// implements, and the per-file result they accumulate into.
package scanner

import (
	"fmt"
	"os"

	"github.com/melatonein5/dionysos/src/finding"
)

// Entry is the minimal filesystem-entry information a Scanner needs —
// the Go analogue of walkdir's DirEntry in the original sources,
// trimmed to what every concrete scanner actually reads.
type Entry struct {
	Path string
	Info os.FileInfo
}

// Scanner is satisfied by every concrete inspector. Implementations
// must be stateless after construction and safe for concurrent use by
// multiple workers, since the engine holds one shared instance per
// registered scanner.
type Scanner interface {
	fmt.Stringer
	ScanFile(entry Entry) []Result
}

// Result is either a Finding or an error, mirroring scan_file's
// signature in §4: "sequence<Result<Finding>>". A scanner error never
// aborts the rest of that file's scanners (§7).
type Result struct {
	Finding finding.Finding
	Err     error
}

// Ok builds a successful Result.
func Ok(f finding.Finding) Result { return Result{Finding: f} }

// Error builds a failed Result.
func Error(err error) Result { return Result{Err: err} }

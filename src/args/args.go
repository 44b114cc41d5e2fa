// Package args provides command-line argument parsing and validation for
// Dionysos.
//
// This package handles the parsing, validation, and management of every
// command-line option controlling a scan: the root path, which scanners
// are active and how they're configured, the output format and
// destination, and runtime tuning like worker count and progress
// reporting.
package args

import "time"

// Args represents the complete set of parsed command-line arguments.
//
// Fields are populated by ParseArgs() and used throughout the
// application to construct the engine and its scanners.
type Args struct {
	// Scan Root
	Path string // directory (or single file) to scan (default: "/")

	// Output Configuration
	Format         string // "text", "csv" or "json" (default: "text")
	OutputFile     string // destination path; empty means stdout
	DisplayStrings bool   // include matched YARA string detail in output

	// Filename Scanner Configuration
	FilenamePatterns []string // regexes tested against each file's basename

	// Levenshtein Scanner Configuration
	Levenshtein bool // enable the well-known-process-name distance-one scanner

	// Hash Scanner Configuration
	FileHashes []string // target hex digests (MD5/SHA1/SHA256, dispatched by length)

	// Yara Scanner Configuration
	YaraRulesPath  string        // path to a .yar/.yara file, a .zip of rules, or a directory
	YaraTimeout    time.Duration // per-file scan timeout; default 240s, 0 means no timeout
	ScanCompressed bool          // decompress gzip/bzip2/xz/zip members before scanning
	DecompressionBuffer int      // bounded decompression buffer size in bytes
	ScanEvtx       bool          // parse and scan Windows event log (.evtx) records
	ScanReg        bool          // parse and scan Windows registry hive values

	// KQL Sidecar
	KqlFile string // optional path to write a derived Kusto hunting query to

	// Runtime Configuration
	Threads      int  // worker pool size (default: number of CPUs)
	ShowProgress bool // render the multi-bar progress UI

	// Logging Configuration
	LogFile string // destination for structured logs; empty means stderr
	Verbose bool   // enable debug-level logging

	// Application Control Flags
	Help bool // whether help was requested
}

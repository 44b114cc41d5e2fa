package args

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/pflag"
)

// defaultYaraTimeoutSecs is the per-file yara scan timeout applied when
// --yara-timeout isn't given, matching the original scanner's
// `timeout: 240` default (§4.5 step 3, §6).
const defaultYaraTimeoutSecs = 240

// ParseArgs parses rawArgs (typically os.Args[1:]) into an Args value,
// applying defaults and validating the combinations that can't be
// expressed as simple flag constraints.
func ParseArgs(rawArgs []string) (Args, error) {
	fs := pflag.NewFlagSet("dionysos", pflag.ContinueOnError)

	var a Args
	fs.StringVarP(&a.Path, "path", "P", "/", "root directory (or single file) to scan")
	fs.StringVarP(&a.Format, "format", "f", "text", "output format: text, csv or json")
	fs.StringVarP(&a.OutputFile, "output-file", "O", "", "write output to this file instead of stdout")
	fs.BoolVarP(&a.DisplayStrings, "print-strings", "s", false, "include matched yara string detail in output")

	fs.StringArrayVarP(&a.FilenamePatterns, "filename", "F", nil, "regex tested against each file's basename; repeatable")
	fs.BoolVar(&a.Levenshtein, "levenshtein", false, "flag filenames within edit distance one of a well-known process name")
	fs.StringArrayVarP(&a.FileHashes, "file-hash", "H", nil, "hex digest (md5/sha1/sha256) to match files against; repeatable")

	fs.StringVarP(&a.YaraRulesPath, "yara", "Y", "", "path to a yara rule file, a zip of rules, or a directory of rules")
	yaraTimeoutSecs := fs.Int("yara-timeout", defaultYaraTimeoutSecs, "per-file yara scan timeout in seconds (0 disables the timeout)")
	fs.BoolVarP(&a.ScanCompressed, "scan-compressed", "C", false, "decompress gzip/bzip2/xz/zip members before scanning them")
	fs.IntVar(&a.DecompressionBuffer, "decompression-buffer", 128*1024*1024, "bounded decompression buffer size in bytes")
	fs.BoolVar(&a.ScanEvtx, "evtx", false, "parse and scan windows event log (.evtx) records")
	fs.BoolVar(&a.ScanReg, "reg", false, "parse and scan windows registry hive values")

	fs.StringVar(&a.KqlFile, "kql", "", "write a derived kusto hunting query for this scan's findings to this file")

	fs.IntVarP(&a.Threads, "threads", "p", runtime.NumCPU(), "number of concurrent scan workers")
	fs.BoolVar(&a.ShowProgress, "progress", false, "render a multi-bar scan progress display")

	fs.StringVarP(&a.LogFile, "log-file", "L", "", "write logs to this file instead of stderr")
	fs.BoolVarP(&a.Verbose, "verbose", "v", false, "enable debug-level logging")

	fs.BoolVarP(&a.Help, "help", "h", false, "show usage information")

	if err := fs.Parse(rawArgs); err != nil {
		return Args{}, err
	}
	a.YaraTimeout = time.Duration(*yaraTimeoutSecs) * time.Second
	if a.Help {
		return a, nil
	}

	if err := validate(a); err != nil {
		return Args{}, err
	}
	return a, nil
}

func validate(a Args) error {
	switch a.Format {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of text, csv, json", a.Format)
	}

	if a.Threads <= 0 {
		return errors.New("threads must be a positive number")
	}
	if a.DecompressionBuffer <= 0 {
		return errors.New("decompression-buffer must be a positive number of bytes")
	}
	if a.YaraTimeout < 0 {
		return errors.New("yara-timeout must not be negative")
	}

	hasScanner := a.YaraRulesPath != "" || a.Levenshtein || len(a.FileHashes) > 0 || len(a.FilenamePatterns) > 0
	if !hasScanner {
		return errors.New("no scanner configured: pass at least one of -Y, -H, -F or --levenshtein")
	}

	return nil
}

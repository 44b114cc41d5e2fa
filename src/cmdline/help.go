// Package cmdline provides command-line interface functionality for
// Dionysos: help text generation and other terminal-facing text that
// isn't itself a scan result.
package cmdline

import "fmt"

// PrintHelp displays usage information for the Dionysos scanner.
func PrintHelp() {
	helpText := `
Usage: dionysos [options]

Scan Target:
  -P, --path <dir>             Root directory (or single file) to scan (default: /)

Scanners (at least one required):
  -F, --filename <regex>       Regex tested against each file's basename; repeatable
  --levenshtein                 Flag filenames within edit distance one of a well-known process name
  -H, --file-hash <hex>        Target hex digest (md5/sha1/sha256); repeatable
  -Y, --yara <path>            Path to a yara rule file, a zip of rules, or a directory of rules
  --yara-timeout <secs>         Per-file yara scan timeout in seconds (default: 240; 0 disables it)
  --scan-compressed, -C         Decompress gzip/bzip2/xz/zip members before scanning them
  --decompression-buffer <n>    Bounded decompression buffer size in bytes (default: 128MiB)
  --evtx                         Parse and scan windows event log (.evtx) records
  --reg                          Parse and scan windows registry hive values

Output:
  -f, --format <format>         Output format: text, csv or json (default: text)
  -O, --output-file <file>      Write output to this file instead of stdout
  -s, --print-strings           Include matched yara string detail in output
  --kql <file>                  Write a derived kusto hunting query for this scan's findings

Runtime:
  -p, --threads <n>             Number of concurrent scan workers (default: number of CPUs)
  --progress                    Render a multi-bar scan progress display
  -L, --log-file <file>         Write logs to this file instead of stderr
  -v, --verbose                 Enable debug-level logging

General:
  -h, --help                    Show this help message and exit

Examples:
  Scan for known-bad hashes:
    dionysos -P /suspicious -H d41d8cd98f00b204e9800998ecf8427e -f csv -O findings.csv

  Scan with yara rules, decompressing archives along the way:
    dionysos -P /var/log -Y rules/ -C -s -f json -O findings.jsonl

  Flag masquerading process names:
    dionysos -P /tmp --levenshtein -p 8 --progress
`
	fmt.Print(helpText)
}

// Package main implements dionysos, a host indicator-of-compromise
// scanner for forensic and incident-response use.
//
// Dionysos is designed for security analysts, forensic investigators and
// incident responders who need to sweep a filesystem (or a single file)
// for known-bad indicators: filename patterns, process names one edit
// away from a well-known binary, cryptographic hashes of known samples,
// and YARA rule matches, including inside compressed archives, Windows
// event logs, and registry hives.
//
// # Overview
//
// Dionysos walks a directory tree concurrently, running every configured
// scanner against each regular file it finds:
//   - Filename pattern matching (regex against basename)
//   - Levenshtein distance-one matching against a table of commonly
//     masqueraded process names
//   - Cryptographic hash matching (MD5, SHA1, SHA256) against a supplied
//     set of target digests
//   - YARA rule evaluation, optionally reaching into gzip/bzip2/xz/zip
//     members, evtx records, and registry hive values
//
// Findings stream to a text, CSV or JSON destination as the scan
// progresses rather than being buffered until the end, and a derived KQL
// hunting query can be written out alongside them.
//
// # Architecture
//
// The application is structured into several specialized packages:
//
//   - main: application entry point, flag-to-scanner wiring, and the
//     drain loop that pushes each file's results to the sink
//   - args: command-line argument parsing and validation
//   - cmdline: terminal help text
//   - engine: directory traversal and the bounded worker pool that
//     dispatches each file to every configured scanner
//   - scanner: the Scanner interface and the shared Entry/Result types
//     every scanner implementation operates on
//   - scanner/filename: regex-based filename scanning
//   - scanner/levenshtein: edit-distance-one process name scanning
//   - scanner/hash: MD5/SHA1/SHA256 target hash scanning
//   - scanner/yara: YARA rule compilation and scanning, including
//     compressed, evtx and registry hive content
//   - classify: file type classification used to decide how a file's
//     content should be read before scanning
//   - finding: the Finding type and its text/CSV/JSON renderings
//   - sink: thread-safe, deduplicating finding output
//   - progress: optional multi-bar scan progress display
//   - kql: KQL hunting query generation from a scan's findings
//
// # Quick Start
//
// Install and build dionysos:
//
//	git clone https://github.com/melatonein5/dionysos
//	cd dionysos
//	go build .
//
// Basic usage examples:
//
//	# Scan for known-bad hashes, writing CSV findings to a file
//	./dionysos -P /suspicious -H d41d8cd98f00b204e9800998ecf8427e -f csv -O findings.csv
//
//	# Scan with yara rules, decompressing archives along the way
//	./dionysos -P /var/log -Y rules/ -C -s -f json -O findings.jsonl
//
//	# Flag filenames one edit away from a well-known process name
//	./dionysos -P /tmp --levenshtein -p 8 --progress
//
// # Use Cases
//
// Incident Response:
//   - Sweeping a compromised host for known-bad hashes or filenames
//   - Detecting masquerading process names dropped alongside legitimate ones
//   - Hunting for YARA-matched malware inside logs, archives and registry hives
//
// Forensic Analysis:
//   - Mining Windows event logs and registry hives for IOC-bearing text
//   - Extracting indicators from scan output to drive a KQL hunt across a fleet
//
// # Output Formats
//
// Text: human-readable, one line per finding, plus one line per matched
// string occurrence for YARA findings when -s is given.
//
// CSV: deduplicated rows suitable for spreadsheets or SIEM ingestion.
//
// JSON: one finding object per line, field order pinned via zero-padded
// numeric key prefixes rather than a custom ordered-map type.
//
// # Security Considerations
//
// Hash Algorithm Selection:
//   - MD5 and SHA1 remain useful for matching known artifacts even though
//     both are cryptographically broken; prefer SHA256 where collision
//     resistance matters.
//
// Resource Bounds:
//   - Decompression of gzip/bzip2/xz/zip members is bounded by a
//     configurable buffer size to avoid decompression-bomb exhaustion.
//   - Registry hive traversal is depth-bounded to guard against cyclic or
//     malformed hives.
//
// # Documentation
//
// Complete package documentation is available via godoc:
//
//	godoc -http=:8080
//	# Visit http://localhost:8080/pkg/github.com/melatonein5/dionysos/
package main

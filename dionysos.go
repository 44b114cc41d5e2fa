// Package main implements dionysos, a host indicator-of-compromise
// scanner for forensic and incident-response use.
//
// dionysos walks a directory tree (or scans a single file), running
// every configured scanner against each regular file it finds: filename
// pattern matching, Levenshtein distance against a well-known
// process-name table, cryptographic hash matching, and YARA rule
// evaluation. Findings are streamed to a text, CSV or JSON destination
// as the scan progresses.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/melatonein5/dionysos/src/args"
	"github.com/melatonein5/dionysos/src/cmdline"
	"github.com/melatonein5/dionysos/src/engine"
	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/kql"
	"github.com/melatonein5/dionysos/src/progress"
	"github.com/melatonein5/dionysos/src/scanner"
	"github.com/melatonein5/dionysos/src/scanner/filename"
	"github.com/melatonein5/dionysos/src/scanner/hash"
	"github.com/melatonein5/dionysos/src/scanner/levenshtein"
	"github.com/melatonein5/dionysos/src/scanner/yara"
	"github.com/melatonein5/dionysos/src/sink"
)

// arguments holds the parsed command-line arguments, populated once
// during init.
var arguments args.Args

func init() {
	var err error
	arguments, err = args.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("unable to parse arguments")
	}

	if arguments.Help {
		cmdline.PrintHelp()
		os.Exit(0)
	}

	configureLogging()
}

// configureLogging builds the package-level zerolog logger from the
// parsed -L/-v flags.
func configureLogging() {
	level := zerolog.InfoLevel
	if arguments.Verbose {
		level = zerolog.DebugLevel
	}

	out := os.Stderr
	if arguments.LogFile != "" {
		f, err := os.OpenFile(arguments.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", arguments.LogFile).Msg("unable to open log file")
		}
		out = f
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	scanners, err := buildScanners(arguments)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to configure scanners")
	}

	destination := os.Stdout
	if arguments.OutputFile != "" {
		f, err := os.Create(arguments.OutputFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", arguments.OutputFile).Msg("unable to create output file")
		}
		defer f.Close()
		destination = f
	}

	format := parseFormat(arguments.Format)
	s := sink.New(destination, format, arguments.DisplayStrings)

	reporter := progress.Noop()
	if arguments.ShowProgress {
		reporter = progress.New(arguments.Threads)
	}
	defer reporter.Close()

	results := engine.Run(engine.Config{
		Root:     arguments.Path,
		Scanners: scanners,
		Workers:  arguments.Threads,
		Progress: reporter,
	})

	var allFindings []finding.Finding
	for result := range results {
		for _, scanErr := range result.Errors {
			log.Warn().Err(scanErr).Str("path", result.Path).Msg("scanner error")
		}
		if err := s.Write(result); err != nil {
			log.Warn().Err(err).Str("path", result.Path).Msg("unable to write finding")
		}
		allFindings = append(allFindings, result.Findings...)
		reporter.FileDone()
	}

	if err := s.Flush(); err != nil {
		log.Fatal().Err(err).Msg("unable to flush output")
	}

	if arguments.KqlFile != "" {
		if err := writeKqlQuery(allFindings, arguments.KqlFile); err != nil {
			log.Warn().Err(err).Msg("unable to write kql query")
		}
	}
}

// buildScanners constructs the scanner list named by the parsed
// arguments, in a fixed order: filename, levenshtein, hash, then yara.
func buildScanners(a args.Args) ([]scanner.Scanner, error) {
	var scanners []scanner.Scanner

	if len(a.FilenamePatterns) > 0 {
		s, err := filename.New(a.FilenamePatterns)
		if err != nil {
			return nil, err
		}
		scanners = append(scanners, s)
	}

	if a.Levenshtein {
		scanners = append(scanners, levenshtein.New())
	}

	if len(a.FileHashes) > 0 {
		s, err := hash.New(a.FileHashes)
		if err != nil {
			return nil, err
		}
		scanners = append(scanners, s)
	}

	if a.YaraRulesPath != "" {
		rules, err := yara.CompileRules(a.YaraRulesPath)
		if err != nil {
			return nil, err
		}
		scanners = append(scanners, yara.New(rules, yara.Config{
			Timeout:        a.YaraTimeout,
			BufferSize:     a.DecompressionBuffer,
			ScanCompressed: a.ScanCompressed,
			ScanEvtx:       a.ScanEvtx,
			ScanReg:        a.ScanReg,
		}))
	}

	return scanners, nil
}

func writeKqlQuery(findings []finding.Finding, path string) error {
	query, err := kql.GenerateQuery(findings, "dionysos_scan", nil)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(query.ToKQLFormat()), 0o644)
}

func parseFormat(name string) sink.Format {
	switch name {
	case "csv":
		return sink.FormatCSV
	case "json":
		return sink.FormatJSON
	default:
		return sink.FormatText
	}
}

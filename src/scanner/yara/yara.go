// Package yara implements the Dionysos YARA scanner (§4.5): a compiled
// rule set is evaluated against each file's content, with the actual
// bytes handed to the rule engine depending on the file's classified
// type — raw, decompressed, per-member of a zip, per-record of an evtx
// log, or per-value of a registry hive.
package yara

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/0xrawsec/golang-evtx/evtx"
	"github.com/Velocidex/regparser"
	"github.com/dsnet/compress/bzip2"
	goyara "github.com/hillu/go-yara/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"

	"github.com/melatonein5/dionysos/src/classify"
	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

// registryMaxDepth bounds the registry hive key traversal against
// pathological/cyclic hive structures (§9 Open Question).
const registryMaxDepth = 64

// Config carries every tunable the original scanner exposed on its
// builder: decompression feature gates and the bounded-buffer size used
// when inflating a compressed member (§4.5, §6).
type Config struct {
	Timeout        time.Duration
	BufferSize     int
	ScanCompressed bool
	ScanEvtx       bool
	ScanReg        bool
}

// Scanner evaluates a compiled YARA rule set against each file, rebinding
// the per-file externals before every scan.
type Scanner struct {
	rules  *goyara.Rules
	config Config
}

// New builds a Scanner from a compiled rule set and its scan options.
func New(rules *goyara.Rules, config Config) *Scanner {
	if config.BufferSize <= 0 {
		config.BufferSize = 128 * 1024 * 1024
	}
	return &Scanner{rules: rules, config: config}
}

func (s *Scanner) String() string { return "YaraScanner" }

// ScanFile classifies the file, rebinds the externals for it, and
// dispatches to the matching scan mode (§4.5).
func (s *Scanner) ScanFile(entry scanner.Entry) []scanner.Result {
	info := entry.Info
	var err error
	if info == nil {
		info, err = os.Stat(entry.Path)
		if err != nil {
			return []scanner.Result{scanner.Error(fmt.Errorf("unable to stat %q: %w", entry.Path, err))}
		}
	}

	ft := classify.Classify(entry.Path, classify.Options{
		ScanCompressed: s.config.ScanCompressed,
		ScanEvtx:       s.config.ScanEvtx,
		ScanReg:        s.config.ScanReg,
	})

	ext := strings.TrimPrefix(filepath.Ext(entry.Path), ".")
	if ext == "" {
		ext = "-"
	}

	externals := Externals{
		Filename:  filepath.Base(entry.Path),
		Filepath:  entry.Path,
		Extension: ext,
		Filetype:  ft.String(),
		MD5:       dummyValue,
		Owner:     fileOwner(info),
	}

	scn, err := s.rules.NewScanner()
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to create yara scanner for %q: %w", entry.Path, err))}
	}
	if s.config.Timeout > 0 {
		scn.SetTimeout(s.config.Timeout)
	}

	switch ft {
	case classify.Zip:
		return s.scanZip(scn, entry.Path, externals)
	case classify.Gzip, classify.Bzip2, classify.Xz:
		return s.scanCompressed(scn, entry.Path, ft, externals)
	case classify.Evtx:
		return s.scanEvtx(scn, entry.Path, externals)
	case classify.Reg:
		return s.scanReg(scn, entry.Path, externals)
	default:
		return s.scanUncompressed(scn, entry.Path, externals)
	}
}

func (s *Scanner) bindExternals(scn *goyara.Scanner, path string, e Externals) error {
	for identifier, value := range e.ToMap() {
		if err := scn.DefineVariable(identifier, value); err != nil {
			return fmt.Errorf("unable to bind yara external %q for %q: %w", identifier, path, err)
		}
	}
	return nil
}

func (s *Scanner) scanUncompressed(scn *goyara.Scanner, path string, e Externals) []scanner.Result {
	if err := s.bindExternals(scn, path, e); err != nil {
		return []scanner.Result{scanner.Error(err)}
	}
	var matches goyara.MatchRules
	if err := scn.SetCallback(&matches).ScanFile(path); err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to scan %q: %w", path, err))}
	}
	return matchesToResults(path, "", false, "", matches)
}

// scanCompressed bounds decompression to the configured buffer size and
// scans whatever was inflated, logging a truncation warning if the
// buffer filled (§4.5, §6 decompression-buffer).
func (s *Scanner) scanCompressed(scn *goyara.Scanner, path string, ft classify.FileType, e Externals) []scanner.Result {
	if err := s.bindExternals(scn, path, e); err != nil {
		return []scanner.Result{scanner.Error(err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to open %q: %w", path, err))}
	}
	defer f.Close()

	data, err := readDecompressed(f, ft, s.config.BufferSize, path)
	if err != nil {
		return []scanner.Result{scanner.Error(err)}
	}

	var matches goyara.MatchRules
	if err := scn.SetCallback(&matches).ScanMem(data); err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to scan decompressed %q: %w", path, err))}
	}
	return matchesToResults(path, "", false, "", matches)
}

func readDecompressed(f *os.File, ft classify.FileType, bufSize int, path string) ([]byte, error) {
	var r io.Reader
	switch ft {
	case classify.Gzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("unable to open gzip stream %q: %w", path, err)
		}
		defer gz.Close()
		r = gz
	case classify.Bzip2:
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to open bzip2 stream %q: %w", path, err)
		}
		defer bz.Close()
		r = bz
	case classify.Xz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("unable to open xz stream %q: %w", path, err)
		}
		r = xr
	default:
		r = f
	}

	limited := io.LimitReader(r, int64(bufSize))
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress %q: %w", path, err)
	}
	if len(data) == 0 {
		log.Warn().Str("path", path).Msg("decompression produced zero bytes")
	} else if len(data) == bufSize {
		log.Warn().Str("path", path).Int("buffer_size", bufSize).
			Msg("decompressed data filled the decompression buffer and may have been truncated")
	}
	return data, nil
}

// scanZip rebinds filename (and the contained-file context) per member
// before decompressing and scanning it, so that an error on one member
// doesn't discard the filename binding of the next (§4.5 ordering note).
func (s *Scanner) scanZip(scn *goyara.Scanner, path string, e Externals) []scanner.Result {
	r, err := zip.OpenReader(path)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to open zip %q: %w", path, err))}
	}
	defer r.Close()

	var results []scanner.Result
	for _, member := range r.File {
		if member.FileInfo().IsDir() {
			continue
		}

		memberExternals := e
		memberExternals.Filename = filepath.Base(member.Name)
		memberExternals.Extension = strings.TrimPrefix(strings.ToLower(filepath.Ext(member.Name)), ".")
		if memberExternals.Extension == "" {
			memberExternals.Extension = "-"
		}
		if err := s.bindExternals(scn, path, memberExternals); err != nil {
			results = append(results, scanner.Error(err))
			continue
		}

		rc, err := member.Open()
		if err != nil {
			results = append(results, scanner.Error(fmt.Errorf("unable to open %q in %q: %w", member.Name, path, err)))
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, int64(s.config.BufferSize)))
		rc.Close()
		if err != nil {
			results = append(results, scanner.Error(fmt.Errorf("unable to read %q in %q: %w", member.Name, path, err)))
			continue
		}

		var matches goyara.MatchRules
		if err := scn.SetCallback(&matches).ScanMem(data); err != nil {
			results = append(results, scanner.Error(fmt.Errorf("unable to scan %q in %q: %w", member.Name, path, err)))
			continue
		}
		results = append(results, matchesToResults(path, member.Name, false, "", matches)...)
	}
	return results
}

// scanEvtx iterates every event record, recursively scanning only the
// string leaves of its decoded JSON value tree (not the raw JSON text,
// which would also match against keys, numbers and structural
// punctuation the original scanner never considers), and attaches the
// record's own JSON text as value_data (§4.5).
func (s *Scanner) scanEvtx(scn *goyara.Scanner, path string, e Externals) []scanner.Result {
	if err := s.bindExternals(scn, path, e); err != nil {
		return []scanner.Result{scanner.Error(err)}
	}

	parser, err := evtx.New(path)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to open evtx file %q: %w", path, err))}
	}

	var results []scanner.Result
	for record := range parser.FastEvents() {
		recordJSON := string(record)

		var decoded interface{}
		if err := json.Unmarshal(record, &decoded); err != nil {
			results = append(results, scanner.Error(fmt.Errorf("unable to decode evtx record json in %q: %w", path, err)))
			continue
		}

		var leaves []string
		collectJSONStrings(decoded, &leaves)

		for _, leaf := range leaves {
			var matches goyara.MatchRules
			if err := scn.SetCallback(&matches).ScanMem([]byte(leaf)); err != nil {
				results = append(results, scanner.Error(fmt.Errorf("unable to scan evtx record string in %q: %w", path, err)))
				continue
			}
			results = append(results, matchesToResults(path, "", true, recordJSON, matches)...)
		}
	}
	return results
}

// collectJSONStrings walks a decoded JSON value (as produced by
// encoding/json's default unmarshal into interface{}) and appends every
// string leaf it finds. Object keys and non-string scalars are not
// collected; object value order follows Go's unspecified map iteration
// order, which only affects result ordering, not which strings are found.
func collectJSONStrings(v interface{}, out *[]string) {
	switch t := v.(type) {
	case string:
		*out = append(*out, t)
	case []interface{}:
		for _, elem := range t {
			collectJSONStrings(elem, out)
		}
	case map[string]interface{}:
		for _, elem := range t {
			collectJSONStrings(elem, out)
		}
	}
}

// scanReg walks the registry hive depth-first, scanning each value as
// text for REG_SZ/REG_EXPAND_SZ (its decoded, NUL-trimmed string form,
// not the raw UTF-16LE bytes) and as raw bytes for every other type, and
// attaching a "<key path>/@<name> = '<repr>'" value_data string (§4.5).
// Traversal depth is bounded against malformed or cyclic hives (§9 Open
// Question).
func (s *Scanner) scanReg(scn *goyara.Scanner, path string, e Externals) []scanner.Result {
	if err := s.bindExternals(scn, path, e); err != nil {
		return []scanner.Result{scanner.Error(err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to open registry hive %q: %w", path, err))}
	}
	defer f.Close()

	hive, err := regparser.NewRegistry(f)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to parse registry hive %q: %w", path, err))}
	}

	var results []scanner.Result
	walkRegistryKey(hive.OpenKey(""), "", 0, func(valueData string, data []byte) {
		var matches goyara.MatchRules
		if err := scn.SetCallback(&matches).ScanMem(data); err != nil {
			results = append(results, scanner.Error(fmt.Errorf("unable to scan registry value in %q: %w", path, err)))
			return
		}
		results = append(results, matchesToResults(path, "", true, valueData, matches)...)
	})
	return results
}

func walkRegistryKey(key *regparser.CM_KEY_NODE, keyPath string, depth int, visit func(valueData string, data []byte)) {
	if key == nil || depth > registryMaxDepth {
		return
	}

	for _, v := range key.Values() {
		repr := valueRepr(v)
		valueData := fmt.Sprintf("%s/@%s = '%s'", keyPath, v.ValueName(), repr)
		visit(valueData, valueScanBytes(v, repr))
	}

	for _, sub := range key.Subkeys() {
		walkRegistryKey(sub, keyPath+"/"+sub.Name(), depth+1, visit)
	}
}

// valueScanBytes returns the bytes a yara scan should run against for a
// registry value: the decoded string form for REG_SZ/REG_EXPAND_SZ (so a
// text rule can match it, instead of its raw UTF-16LE on-disk encoding),
// and the raw value bytes for everything else (§4.5's "scan string-valued
// data as text and binary data as bytes").
func valueScanBytes(v *regparser.CM_KEY_VALUE, repr string) []byte {
	switch v.ValueData().Type {
	case regparser.REG_SZ, regparser.REG_EXPAND_SZ:
		return []byte(repr)
	default:
		return v.ValueData().Buff
	}
}

func valueRepr(v *regparser.CM_KEY_VALUE) string {
	data := v.ValueData()
	switch data.Type {
	case regparser.REG_SZ, regparser.REG_EXPAND_SZ:
		return string(bytes.TrimRight(data.Buff, "\x00"))
	case regparser.REG_DWORD:
		if len(data.Buff) >= 4 {
			return strconv.FormatUint(uint64(data.Buff[0])|uint64(data.Buff[1])<<8|uint64(data.Buff[2])<<16|uint64(data.Buff[3])<<24, 10)
		}
		return ""
	default:
		return fmt.Sprintf("%x", data.Buff)
	}
}

// matchesToResults lifts go-yara's match records into findings, carrying
// the optional contained-file/value-data context forward.
func matchesToResults(path, containedFile string, hasValueData bool, valueData string, matches goyara.MatchRules) []scanner.Result {
	results := make([]scanner.Result, 0, len(matches))
	for _, m := range matches {
		var stringMatches []finding.StringMatch
		for _, ms := range m.Strings {
			stringMatches = append(stringMatches, finding.StringMatch{
				Identifier: ms.Name,
				Offsets:    []uint64{ms.Offset},
				Data:       [][]byte{ms.Data},
			})
		}
		stringMatches = mergeStringMatches(stringMatches)

		results = append(results, scanner.Ok(finding.Finding{
			Kind:          finding.KindYara,
			FilePath:      path,
			RuleName:      m.Rule,
			Namespace:     m.Namespace,
			Tags:          m.Tags,
			Matches:       stringMatches,
			ValueData:     valueData,
			HasValueData:  hasValueData,
			ContainedFile: containedFile,
		}))
	}
	return results
}

// mergeStringMatches folds go-yara's one-entry-per-occurrence match list
// into one StringMatch per identifier, the shape finding.StringMatch
// expects.
func mergeStringMatches(in []finding.StringMatch) []finding.StringMatch {
	byID := make(map[string]*finding.StringMatch)
	var order []string
	for _, sm := range in {
		existing, ok := byID[sm.Identifier]
		if !ok {
			copied := sm
			byID[sm.Identifier] = &copied
			order = append(order, sm.Identifier)
			continue
		}
		existing.Offsets = append(existing.Offsets, sm.Offsets...)
		existing.Data = append(existing.Data, sm.Data...)
	}
	out := make([]finding.StringMatch, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

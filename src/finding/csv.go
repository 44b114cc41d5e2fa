package finding

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CsvLine is one row of the CSV renderer's output and simultaneously its
// own dedup key: two findings that render to an identical CsvLine are
// the same row and collapse to one in the output set.
//
// All four fields are plain strings, so CsvLine is comparable and can be
// used directly as a Go map key — that map is the dedup set.
type CsvLine struct {
	ScannerName string
	RuleName    string
	FoundInFile string
	Details     string
}

// csvEscape doubles embedded quotes, matching the CSV quoting the
// original implementation used for every field.
func csvEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// Render writes the receiver's escaped, quoted CSV row.
func (l CsvLine) Render() string {
	return fmt.Sprintf(`"%s","%s","%s","%s"`, csvEscape(l.ScannerName), csvEscape(l.RuleName), csvEscape(l.FoundInFile), csvEscape(l.Details))
}

// foundInFile folds a zip-contained-file reference into the
// "<outer>:<member>" form used throughout the end-to-end scenarios.
func (f Finding) foundInFile() string {
	if f.ContainedFile != "" {
		return f.FilePath + ":" + f.ContainedFile
	}
	return f.FilePath
}

// hexEscapeBytes renders bytes as printable ASCII as-is and everything
// else as "\xx", matching the text renderer's match-string format.
func hexEscapeBytes(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
		} else {
			sb.WriteString("\\x")
			sb.WriteString(hex.EncodeToString([]byte{c}))
		}
	}
	return sb.String()
}

// detailsPrefix folds value_data (the event-record JSON or registry
// value context) into the details column so that two findings differing
// only in value_data are kept as distinct rows, per the dedup key in
// the data model.
func (f Finding) detailsPrefix() string {
	if f.HasValueData {
		return "value=" + f.ValueData + "; "
	}
	return ""
}

// CsvLines renders a Finding into its CSV row set. Without
// displayStrings a Yara finding collapses to a single row; with it,
// every matched string's every (offset, bytes) tuple gets its own row,
// so that the match_offset component of the dedup key is observable.
func (f Finding) CsvLines(displayStrings bool) []CsvLine {
	scanner := f.Kind.String()
	file := f.foundInFile()
	prefix := f.detailsPrefix()

	switch f.Kind {
	case KindFilename:
		return []CsvLine{{ScannerName: scanner, RuleName: f.Pattern, FoundInFile: file, Details: prefix}}
	case KindLevenshtein:
		return []CsvLine{{ScannerName: scanner, RuleName: f.Pattern, FoundInFile: file, Details: prefix}}
	case KindHash:
		return []CsvLine{{ScannerName: scanner, RuleName: f.HashString(), FoundInFile: file, Details: prefix}}
	case KindYara:
		if !displayStrings || len(f.Matches) == 0 {
			return []CsvLine{{ScannerName: scanner, RuleName: f.RuleName, FoundInFile: file, Details: prefix}}
		}
		var lines []CsvLine
		for _, m := range f.Matches {
			for i, off := range m.Offsets {
				var data []byte
				if i < len(m.Data) {
					data = m.Data[i]
				}
				details := fmt.Sprintf("%s%s @ %d: %s", prefix, m.Identifier, off, hexEscapeBytes(data))
				lines = append(lines, CsvLine{ScannerName: scanner, RuleName: f.RuleName, FoundInFile: file, Details: details})
			}
		}
		if len(lines) == 0 {
			lines = append(lines, CsvLine{ScannerName: scanner, RuleName: f.RuleName, FoundInFile: file, Details: prefix})
		}
		return lines
	default:
		return nil
	}
}

// Package finding implements the Dionysos finding model: the sum type
// every scanner reports through, and the dedup key used by the CSV
// renderer.
//
// A Finding is deliberately a single flat struct rather than four
// separate Go types behind an interface: the four variants share enough
// fields (file path, a rule/pattern identifier) that a tagged union
// keeps the scanner and sink code simple, and nothing outside this
// package needs to switch on a Finding's concrete Go type the way it
// would need to dispatch on an interface method set.
package finding

import "fmt"

// Kind identifies which scanner produced a Finding.
type Kind int

const (
	KindFilename Kind = iota
	KindLevenshtein
	KindHash
	KindYara
)

// String returns the scanner name as used in CSV's scanner_name column
// and in JSON's "01_scanner" field.
func (k Kind) String() string {
	switch k {
	case KindFilename:
		return "Filename"
	case KindLevenshtein:
		return "Levenshtein"
	case KindHash:
		return "Hash"
	case KindYara:
		return "Yara"
	default:
		return "Unknown"
	}
}

// HashKind tags a CryptoHash's algorithm.
type HashKind int

const (
	MD5 HashKind = iota
	SHA1
	SHA256
)

// String returns the algorithm name as used in hash finding details.
func (k HashKind) String() string {
	switch k {
	case MD5:
		return "MD5"
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	default:
		return "Unknown"
	}
}

// StringMatch is one YARA matched string: its identifier (e.g. "$a")
// and every (offset, matched bytes) tuple the scan produced for it.
type StringMatch struct {
	Identifier string
	Offsets    []uint64
	Data       [][]byte
}

// Finding is one structured report emitted by a scanner for one file.
//
// Only the fields relevant to Kind are populated; the zero value of the
// rest is the documented "absent" state (empty string, nil slice).
type Finding struct {
	Kind     Kind
	FilePath string

	// Filename: the regex source text that matched.
	// Levenshtein: the well-known name approximated at distance 1.
	Pattern string

	// Hash
	HashKind   HashKind
	HashDigest []byte // fixed-width per HashKind: 16/20/32 bytes

	// Yara
	RuleName      string
	Namespace     string
	Tags          []string
	Matches       []StringMatch
	ValueData     string // JSON event-record text, or "<path>/@<name> = '<repr>'"; empty if absent
	HasValueData  bool
	ContainedFile string // path inside a zip; empty if absent
}

// HashString renders a hash digest as "KIND:hex", e.g. "MD5:d41d8cd9...".
func (f Finding) HashString() string {
	return fmt.Sprintf("%s:%x", f.HashKind, f.HashDigest)
}

// RuleOrPatternID returns the identifier the dedup key and the
// human-readable renderers use as the "what matched" column: the regex
// source for Filename, the approximated name for Levenshtein, the
// "KIND:hex" form for Hash, and the rule identifier for Yara.
func (f Finding) RuleOrPatternID() string {
	switch f.Kind {
	case KindFilename, KindLevenshtein:
		return f.Pattern
	case KindHash:
		return f.HashString()
	case KindYara:
		return f.RuleName
	default:
		return ""
	}
}

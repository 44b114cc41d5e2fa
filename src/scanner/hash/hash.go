// Package hash implements the Dionysos cryptographic hash scanner
// (§4.4): files are matched against a configured target set of
// MD5/SHA1/SHA256 digests, hashed once via a read-only memory mapping so
// every configured algorithm family shares the same I/O pass.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/melatonein5/dionysos/src/finding"
	"github.com/melatonein5/dionysos/src/scanner"
)

const (
	md5Size    = 16
	sha1Size   = 20
	sha256Size = 32
)

// CryptoHash is a parsed, tagged target digest (§3).
type CryptoHash struct {
	Kind   finding.HashKind
	Digest []byte
}

// ParseHash hex-decodes a target digest and dispatches its variant on
// byte length; any other length is a construction-time error (§4.4,
// §8 "hash parsing").
func ParseHash(hexStr string) (CryptoHash, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return CryptoHash{}, fmt.Errorf("invalid hash %q: %w", hexStr, err)
	}
	switch len(raw) {
	case md5Size:
		return CryptoHash{Kind: finding.MD5, Digest: raw}, nil
	case sha1Size:
		return CryptoHash{Kind: finding.SHA1, Digest: raw}, nil
	case sha256Size:
		return CryptoHash{Kind: finding.SHA256, Digest: raw}, nil
	default:
		return CryptoHash{}, fmt.Errorf("invalid hash length of %q: must hex-decode to 16, 20 or 32 bytes", hexStr)
	}
}

type key struct {
	kind   finding.HashKind
	digest string
}

// Scanner holds the parsed target set and which hash families are
// actually present in it, so a file is only hashed with the families
// that could possibly match (§4.4 "Rationale").
type Scanner struct {
	targets   map[key]struct{}
	hasMD5    bool
	hasSHA1   bool
	hasSHA256 bool
}

// New parses every hex string into a CryptoHash; a bad length is a
// configuration error (§7).
func New(hexHashes []string) (*Scanner, error) {
	s := &Scanner{targets: make(map[key]struct{})}
	for _, h := range hexHashes {
		parsed, err := ParseHash(h)
		if err != nil {
			return nil, err
		}
		s.targets[key{parsed.Kind, string(parsed.Digest)}] = struct{}{}
		switch parsed.Kind {
		case finding.MD5:
			s.hasMD5 = true
		case finding.SHA1:
			s.hasSHA1 = true
		case finding.SHA256:
			s.hasSHA256 = true
		}
	}
	return s, nil
}

func (s *Scanner) String() string { return "HashScanner" }

// ScanFile mmaps the file read-only (or hashes an empty slice for a
// zero-length file) and emits one HashMatch per computed digest present
// in the target set (§4.4).
func (s *Scanner) ScanFile(entry scanner.Entry) []scanner.Result {
	info := entry.Info
	var err error
	if info == nil {
		info, err = os.Stat(entry.Path)
		if err != nil {
			return []scanner.Result{scanner.Error(fmt.Errorf("unable to stat %q: %w", entry.Path, err))}
		}
	}

	if info.Size() == 0 {
		return s.scanBytes(entry.Path, nil)
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to open %q: %w", entry.Path, err))}
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return []scanner.Result{scanner.Error(fmt.Errorf("unable to mmap %q: %w", entry.Path, err))}
	}
	defer m.Unmap()

	return s.scanBytes(entry.Path, m)
}

func (s *Scanner) scanBytes(path string, data []byte) []scanner.Result {
	var results []scanner.Result

	if s.hasMD5 {
		sum := md5.Sum(data)
		results = append(results, s.matchResult(path, finding.MD5, sum[:])...)
	}
	if s.hasSHA1 {
		sum := sha1.Sum(data)
		results = append(results, s.matchResult(path, finding.SHA1, sum[:])...)
	}
	if s.hasSHA256 {
		sum := sha256.Sum256(data)
		results = append(results, s.matchResult(path, finding.SHA256, sum[:])...)
	}
	return results
}

func (s *Scanner) matchResult(path string, kind finding.HashKind, digest []byte) []scanner.Result {
	if _, ok := s.targets[key{kind, string(digest)}]; !ok {
		return nil
	}
	return []scanner.Result{scanner.Ok(finding.Finding{
		Kind:       finding.KindHash,
		FilePath:   path,
		HashKind:   kind,
		HashDigest: digest,
	})}
}

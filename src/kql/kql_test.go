package kql

import (
	"strings"
	"testing"

	"github.com/melatonein5/dionysos/src/finding"
)

func sampleFindings() []finding.Finding {
	return []finding.Finding{
		{Kind: finding.KindHash, FilePath: "/tmp/malware.exe", HashKind: finding.MD5, HashDigest: []byte{0xab, 0xc1, 0x23}},
		{Kind: finding.KindHash, FilePath: "/tmp/trojan.dll", HashKind: finding.SHA256, HashDigest: []byte{0xde, 0xf4, 0x56}},
		{Kind: finding.KindFilename, FilePath: "/tmp/malware.exe", Pattern: "malware.exe"},
		{Kind: finding.KindFilename, FilePath: "/tmp/trojan.dll", Pattern: "trojan.dll"},
	}
}

func TestGenerateQueryIncludesHashesAndFilenames(t *testing.T) {
	query, err := GenerateQuery(sampleFindings(), "test_query", nil)
	if err != nil {
		t.Fatalf("GenerateQuery: %v", err)
	}

	if query.Name != "test_query" {
		t.Errorf("expected query name 'test_query', got %q", query.Name)
	}
	if len(query.HashTypes) != 2 {
		t.Errorf("expected 2 hash types, got %d", len(query.HashTypes))
	}
	if len(query.FilenameList) != 2 {
		t.Errorf("expected 2 filenames, got %d", len(query.FilenameList))
	}

	out := query.ToKQLFormat()
	if !strings.Contains(out, "DeviceFileEvents") {
		t.Error("expected the query to target DeviceFileEvents by default")
	}
	if !strings.Contains(out, "abc123") {
		t.Error("expected the md5 hash to appear in the query")
	}
	if !strings.Contains(out, "malware.exe") {
		t.Error("expected the filename to appear in the query")
	}
}

func TestGenerateQueryHashOnlyOmitsFilenames(t *testing.T) {
	query, err := GenerateQueryHashOnly(sampleFindings(), "hash_only", nil)
	if err != nil {
		t.Fatalf("GenerateQueryHashOnly: %v", err)
	}
	if len(query.FilenameList) != 0 {
		t.Errorf("expected no filenames in a hash-only query, got %d", len(query.FilenameList))
	}
	if len(query.HashList) == 0 {
		t.Error("expected hash-only query to still include hashes")
	}
}

func TestGenerateQueryRejectsEmptyFindings(t *testing.T) {
	if _, err := GenerateQuery(nil, "empty", nil); err == nil {
		t.Error("expected an error when no findings are provided")
	}
}

func TestGenerateQueryIgnoresYaraAndLevenshteinFindings(t *testing.T) {
	findings := []finding.Finding{
		{Kind: finding.KindYara, FilePath: "/tmp/a", RuleName: "rule_a"},
		{Kind: finding.KindLevenshtein, FilePath: "/tmp/b", Pattern: "explorer.exe"},
	}
	if _, err := GenerateQuery(findings, "no_pivotable_indicators", nil); err == nil {
		t.Error("expected an error since neither finding kind contributes a kql-pivotable indicator")
	}
}

func TestSanitizeNamePrefixesLeadingDigit(t *testing.T) {
	if got := sanitizeName("123abc"); got != "_123abc" {
		t.Errorf("expected leading digit to be prefixed with underscore, got %q", got)
	}
}

package finding

import (
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindFilename, "Filename"},
		{KindLevenshtein, "Levenshtein"},
		{KindHash, "Hash"},
		{KindYara, "Yara"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestHashString(t *testing.T) {
	f := Finding{Kind: KindHash, HashKind: MD5, HashDigest: []byte{0xde, 0xad, 0xbe, 0xef}}
	if got, want := f.HashString(), "MD5:deadbeef"; got != want {
		t.Errorf("HashString() = %q, want %q", got, want)
	}
}

func TestCsvLinesDedup(t *testing.T) {
	f := Finding{Kind: KindFilename, FilePath: "/tmp/a.exe", Pattern: `^a\.exe$`}
	lines := f.CsvLines(false)
	if len(lines) != 1 {
		t.Fatalf("expected one CSV line, got %d", len(lines))
	}
	other := f.CsvLines(false)
	if lines[0] != other[0] {
		t.Errorf("identical findings rendered different CSV lines: %+v vs %+v", lines[0], other[0])
	}
}

func TestFoundInFileWithContainedFile(t *testing.T) {
	f := Finding{Kind: KindYara, FilePath: "/tmp/sample.zip", ContainedFile: "sample1.txt", RuleName: "rule1"}
	lines := f.CsvLines(false)
	if lines[0].FoundInFile != "/tmp/sample.zip:sample1.txt" {
		t.Errorf("FoundInFile = %q, want %q", lines[0].FoundInFile, "/tmp/sample.zip:sample1.txt")
	}
}

func TestCsvLinesYaraWithStrings(t *testing.T) {
	f := Finding{
		Kind:     KindYara,
		FilePath: "/tmp/a",
		RuleName: "rule1",
		Matches: []StringMatch{
			{Identifier: "$a", Offsets: []uint64{0, 10}, Data: [][]byte{[]byte("foo"), []byte("bar")}},
		},
	}
	lines := f.CsvLines(true)
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows for 2 offsets, got %d", len(lines))
	}
}

func TestJSONLineHasNumberedKeys(t *testing.T) {
	f := Finding{Kind: KindHash, FilePath: "/tmp/a", HashKind: SHA256, HashDigest: []byte{1, 2}}
	b, err := f.JSONLine(false)
	if err != nil {
		t.Fatalf("JSONLine: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"01_scanner"`, `"02_suspicious_file"`, `"03_hash_type"`, `"04_hash_value"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %q missing key %q", s, want)
		}
	}
}

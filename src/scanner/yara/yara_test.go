package yara

import (
	"testing"

	"github.com/melatonein5/dionysos/src/finding"
)

func TestDummiesUsesPlaceholderForEveryField(t *testing.T) {
	d := Dummies()
	m := d.ToMap()
	for _, id := range []string{"filename", "filepath", "extension", "filetype", "md5"} {
		if m[id] != dummyValue {
			t.Errorf("expected %q to be the dummy placeholder, got %q", id, m[id])
		}
	}
	if m["owner"] != "dummy" {
		t.Errorf("expected owner dummy placeholder 'dummy', got %q", m["owner"])
	}
}

func TestIsRuleFileCaseInsensitive(t *testing.T) {
	cases := map[string]bool{
		"rule.yar":    true,
		"RULE.YARA":   true,
		"readme.txt":  false,
		"archive.zip": false,
	}
	for name, want := range cases {
		if got := isRuleFile(name); got != want {
			t.Errorf("isRuleFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMergeStringMatchesCombinesByIdentifier(t *testing.T) {
	in := []struct {
		id     string
		offset uint64
		data   []byte
	}{
		{"$a", 10, []byte("foo")},
		{"$a", 20, []byte("foo")},
		{"$b", 5, []byte("bar")},
	}

	matches := make([]finding.StringMatch, 0, len(in))
	for _, e := range in {
		matches = append(matches, finding.StringMatch{Identifier: e.id, Offsets: []uint64{e.offset}, Data: [][]byte{e.data}})
	}

	merged := mergeStringMatches(matches)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged identifiers, got %d", len(merged))
	}
	if merged[0].Identifier != "$a" || len(merged[0].Offsets) != 2 {
		t.Errorf("expected $a to merge its two occurrences, got %+v", merged[0])
	}
	if merged[1].Identifier != "$b" || len(merged[1].Offsets) != 1 {
		t.Errorf("expected $b with one occurrence, got %+v", merged[1])
	}
}

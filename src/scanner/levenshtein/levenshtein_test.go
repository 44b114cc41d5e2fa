package levenshtein

import (
	"testing"

	"github.com/melatonein5/dionysos/src/scanner"
)

func TestDistanceOneEqualStringsRejected(t *testing.T) {
	if DistanceOne("svchost.exe", "svchost.exe") {
		t.Error("equal strings must not count as distance one")
	}
}

func TestDistanceOneSymmetric(t *testing.T) {
	a, b := "explorer.exe", "expl0rer.exe"
	if DistanceOne(a, b) != DistanceOne(b, a) {
		t.Error("DistanceOne must be symmetric")
	}
}

func TestDistanceOneSingleInsertion(t *testing.T) {
	if !DistanceOne("chrome.exe", "chromme.exe") {
		t.Error("single inserted character should be distance one")
	}
}

func TestDistanceOneLengthGuard(t *testing.T) {
	if DistanceOne("a", "abcdef") {
		t.Error("lengths differing by more than one must be rejected before any DP runs")
	}
}

func TestDistanceOneSubstitution(t *testing.T) {
	cases := []string{"expl0rer.exe", "explor3r.exe", "3xplorer.exe"}
	for _, c := range cases {
		if !DistanceOne(c, "explorer.exe") {
			t.Errorf("expected %q to be distance one from explorer.exe", c)
		}
	}
}

func TestDistanceOneTooFar(t *testing.T) {
	cases := []string{"3xpl0rer.exe", "expl0r3r.exe"}
	for _, c := range cases {
		if DistanceOne(c, "explorer.exe") {
			t.Errorf("expected %q to be more than distance one from explorer.exe", c)
		}
	}
}

func TestScanFileMatchesSvchostLookalike(t *testing.T) {
	s := New()
	results := s.ScanFile(scanner.Entry{Path: "/tmp/svch0st.exe"})
	if len(results) != 1 {
		t.Fatalf("expected one match, got %d", len(results))
	}
	if results[0].Finding.Pattern != "svchost.exe" {
		t.Errorf("expected match against svchost.exe, got %q", results[0].Finding.Pattern)
	}
}

func TestScanFileNoFalsePositiveOnUnrelatedName(t *testing.T) {
	s := New()
	if results := s.ScanFile(scanner.Entry{Path: "/tmp/readme.txt"}); len(results) != 0 {
		t.Errorf("expected no matches, got %d", len(results))
	}
}

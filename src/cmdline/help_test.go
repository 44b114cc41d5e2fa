package cmdline

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func captureHelp(t *testing.T) string {
	t.Helper()
	originalStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	PrintHelp()

	w.Close()
	os.Stdout = originalStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestPrintHelpContainsScannerFlags(t *testing.T) {
	output := captureHelp(t)

	expected := []string{
		"Usage: dionysos [options]",
		"-P, --path",
		"-F, --filename",
		"--levenshtein",
		"-H, --file-hash",
		"-Y, --yara",
		"--scan-compressed",
		"--evtx",
		"--reg",
	}

	for _, section := range expected {
		if !strings.Contains(output, section) {
			t.Errorf("help output should contain %q", section)
		}
	}
}

func TestPrintHelpContainsOutputFlags(t *testing.T) {
	output := captureHelp(t)

	expected := []string{
		"-f, --format",
		"-O, --output-file",
		"-s, --print-strings",
		"--kql",
		"text, csv or json",
	}

	for _, section := range expected {
		if !strings.Contains(output, section) {
			t.Errorf("help output should contain %q", section)
		}
	}
}

func TestPrintHelpContainsRuntimeFlags(t *testing.T) {
	output := captureHelp(t)

	expected := []string{
		"-p, --threads",
		"--progress",
		"-L, --log-file",
		"-v, --verbose",
		"-h, --help",
	}

	for _, section := range expected {
		if !strings.Contains(output, section) {
			t.Errorf("help output should contain %q", section)
		}
	}
}

func TestPrintHelpHasExamples(t *testing.T) {
	output := captureHelp(t)
	if !strings.Contains(output, "Examples:") {
		t.Error("help output should contain an Examples section")
	}
	if !strings.Contains(output, "dionysos -P") {
		t.Error("help output should contain at least one dionysos invocation example")
	}
}

func TestPrintHelpOutputNotEmpty(t *testing.T) {
	output := captureHelp(t)
	if len(output) < 500 {
		t.Errorf("help output seems too short (%d characters), expected substantial help text", len(output))
	}
}

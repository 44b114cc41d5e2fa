package args

import (
	"testing"
	"time"
)

func TestParseArgsDefaults(t *testing.T) {
	a, err := ParseArgs([]string{"--levenshtein"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if a.Path != "/" {
		t.Errorf("expected default path '/', got %q", a.Path)
	}
	if a.Format != "text" {
		t.Errorf("expected default format 'text', got %q", a.Format)
	}
	if a.DecompressionBuffer != 128*1024*1024 {
		t.Errorf("expected default decompression buffer of 128MiB, got %d", a.DecompressionBuffer)
	}
	if a.YaraTimeout != 240*time.Second {
		t.Errorf("expected default yara timeout of 240s, got %s", a.YaraTimeout)
	}
}

func TestParseArgsYaraTimeoutIsSeconds(t *testing.T) {
	a, err := ParseArgs([]string{"--levenshtein", "--yara-timeout", "5"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if a.YaraTimeout != 5*time.Second {
		t.Errorf("expected --yara-timeout 5 to parse as 5s, got %s", a.YaraTimeout)
	}
}

func TestParseArgsRepeatableFlags(t *testing.T) {
	a, err := ParseArgs([]string{"-F", `^svchost`, "-F", `\.tmp$`})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(a.FilenamePatterns) != 2 {
		t.Fatalf("expected 2 filename patterns, got %d", len(a.FilenamePatterns))
	}
}

func TestParseArgsRejectsInvalidFormat(t *testing.T) {
	if _, err := ParseArgs([]string{"--levenshtein", "-f", "xml"}); err == nil {
		t.Error("expected an error for an unsupported output format")
	}
}

func TestParseArgsRequiresAtLeastOneScanner(t *testing.T) {
	if _, err := ParseArgs([]string{}); err == nil {
		t.Error("expected an error when no scanner is configured")
	}
}

func TestParseArgsHelpSkipsValidation(t *testing.T) {
	a, err := ParseArgs([]string{"-h"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !a.Help {
		t.Error("expected Help to be true")
	}
}

func TestParseArgsRejectsNonPositiveThreads(t *testing.T) {
	if _, err := ParseArgs([]string{"--levenshtein", "-p", "0"}); err == nil {
		t.Error("expected an error for zero threads")
	}
}

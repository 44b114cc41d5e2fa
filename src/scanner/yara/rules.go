package yara

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goyara "github.com/hillu/go-yara/v4"
)

// isRuleFile reports whether name has a recognized YARA source extension,
// matching case-insensitively the way the original rule collector did.
func isRuleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yar" || ext == ".yara"
}

// collectSources walks path and returns the text of every YARA rule file
// found there. path may be a single rule file, a .zip archive of rule
// files, or a directory tree — matching §4.5's three rule-source forms.
func collectSources(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to stat yara rule path %q: %w", path, err)
	}

	if info.IsDir() {
		return collectFromDirectory(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return collectFromZip(path)
	case ".yar", ".yara":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read yara rule file %q: %w", path, err)
		}
		return []string{string(src)}, nil
	default:
		return nil, fmt.Errorf("yara rule path %q is neither a directory, a .zip archive nor a .yar/.yara file", path)
	}
}

func collectFromDirectory(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isRuleFile(d.Name()) {
			return nil
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("unable to read yara rule file %q: %w", p, err)
		}
		sources = append(sources, string(src))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func collectFromZip(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open yara rule archive %q: %w", path, err)
	}
	defer r.Close()

	var sources []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isRuleFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("unable to open %q in %q: %w", f.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("unable to read %q in %q: %w", f.Name, path, err)
		}
		sources = append(sources, string(data))
	}
	return sources, nil
}

// CompileRules collects every YARA rule source reachable from path and
// compiles them into a single Rules object, with the dummy external
// bindings defined up front so every rule's condition can reference them
// (§4.5, §7 "a rule compilation error is fatal at startup").
func CompileRules(path string) (*goyara.Rules, error) {
	sources, err := collectSources(path)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no .yar/.yara rule files found under %q", path)
	}

	compiler, err := goyara.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("unable to create yara compiler: %w", err)
	}

	for identifier, value := range Dummies().ToMap() {
		if err := compiler.DefineVariable(identifier, value); err != nil {
			return nil, fmt.Errorf("unable to define yara external %q: %w", identifier, err)
		}
	}

	for i, src := range sources {
		namespace := fmt.Sprintf("ns%d", i)
		if err := compiler.AddString(src, namespace); err != nil {
			return nil, fmt.Errorf("unable to compile yara rules from %q: %w", path, err)
		}
	}

	rules, err := compiler.GetRules()
	if err != nil {
		return nil, fmt.Errorf("unable to finalize compiled yara rules: %w", err)
	}
	return rules, nil
}

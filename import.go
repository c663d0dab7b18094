package rvdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Import rebuilds a ScriptSet from a grouped or flat export. Script order
// and names come from the manifest Export left in src; bodies come from
// the .rb files, minus the encoding line Export prepended, so edits made
// to the files are picked up. A directory without a manifest, or a
// single-file export, returns ErrUnsupported.
//
// Line endings are kept as they appear in the files.
func Import(src string) (*ScriptSet, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a single-file export", ErrUnsupported, src)
	}

	var set *ScriptSet
	err = withRoot(src, func(root *os.Root) error {
		data, err := readFile(root, manifestName)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s has no %s", ErrUnsupported, src, manifestName)
		}
		if err != nil {
			return err
		}

		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFormat, manifestName, err)
		}

		set = &ScriptSet{Scripts: make([]Script, 0, len(m.Scripts))}
		for _, e := range m.Scripts {
			if e.File == "" {
				set.Scripts = append(set.Scripts, Script{Name: e.Name, Body: e.Body})
				continue
			}
			body, err := readFile(root, filepath.FromSlash(e.File))
			if err != nil {
				return fmt.Errorf("script %q: %w", e.Name, err)
			}
			set.Scripts = append(set.Scripts, Script{Name: e.Name, Body: stripEncodingLine(string(body))})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func stripEncodingLine(s string) string {
	if !strings.HasPrefix(s, encodingLine) {
		return s
	}
	rest := s[len(encodingLine):]
	if r, ok := strings.CutPrefix(rest, "\r\n"); ok {
		return r
	}
	if r, ok := strings.CutPrefix(rest, "\n"); ok {
		return r
	}
	return s
}

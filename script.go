// Script bundle.
//
// The bundle is a Marshal array of three element arrays:
//
//	[tag Integer, name String, body String (zlib)]
//
// Order matters: the engine evaluates scripts top to bottom, so the
// position of a script is its load order.
package rvdata

import "fmt"

// Script is one named source file.
type Script struct {
	Name string
	Body string
}

// ScriptSet is an ordered list of scripts.
type ScriptSet struct {
	Scripts []Script
}

// Len returns the number of scripts.
func (s *ScriptSet) Len() int {
	return len(s.Scripts)
}

// DecodeScripts parses a script bundle. A root that is not an array, or
// any entry that is not a [Integer, String, String] triple, wraps
// ErrFormat. A body that does not inflate wraps both ErrFormat and
// ErrDecompress.
func DecodeScripts(data []byte) (*ScriptSet, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if root.Kind() != KindArray {
		return nil, fmt.Errorf("%w: script bundle root is %s, want array", ErrFormat, root.Kind())
	}

	set := &ScriptSet{Scripts: make([]Script, 0, root.Len())}
	for i, entry := range root.Items() {
		if entry.Kind() != KindArray || entry.Len() != 3 ||
			entry.Index(0).Kind() != KindInt ||
			entry.Index(1).Kind() != KindString ||
			entry.Index(2).Kind() != KindString {
			return nil, fmt.Errorf("%w: script entry %d is not [tag, name, body]", ErrFormat, i)
		}
		body, err := decompress(entry.Index(2).Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: script entry %d: %w", ErrFormat, i, err)
		}
		set.Scripts = append(set.Scripts, Script{
			Name: entry.Index(1).Text(),
			Body: string(body),
		})
	}
	return set, nil
}

// EncodeScripts renders a script bundle, tagging each entry with
// ScriptTag(body, alg).
func EncodeScripts(set *ScriptSet, alg int) ([]byte, error) {
	entries := make([]*Value, 0, len(set.Scripts))
	for i, s := range set.Scripts {
		tag := ScriptTag([]byte(s.Body), alg)
		if tag < 0 {
			return nil, fmt.Errorf("%w: %d", ErrAlgorithm, alg)
		}
		compressed, err := compress([]byte(s.Body))
		if err != nil {
			return nil, fmt.Errorf("script %d: %w", i, err)
		}
		entries = append(entries, Array(Int(tag), Str(s.Name), Bytes(compressed)))
	}
	return Encode(Array(entries...))
}

// LoadScripts reads a script bundle file.
func LoadScripts(path string) (*ScriptSet, error) {
	data, err := readPath(path)
	if err != nil {
		return nil, err
	}
	set, err := DecodeScripts(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Save writes the bundle to path, replacing the file atomically.
func (s *ScriptSet) Save(path string, config Config) error {
	config = config.withDefaults()
	data, err := EncodeScripts(s, config.TagAlgorithm)
	if err != nil {
		return err
	}
	return writePath(path, data, config.SyncWrites)
}

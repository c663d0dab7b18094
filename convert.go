// Script export.
//
// Export writes a ScriptSet as plain .rb files in one of three layouts:
//
//	grouped  dest/<group>/<name>.rb, where a script named "▼ Group" opens
//	         a new group directory and scripts before the first marker
//	         sit directly in dest
//	flat     dest/<name>.rb for every script with a non-empty body
//	single   dest is one file holding every body in order
//
// The directory layouts also write an index dest.rb that requires each
// file in load order, and a manifest dest/.manifest.json that Import uses
// to rebuild the bundle.
package rvdata

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ExportLayout selects the export tree shape.
type ExportLayout int

// Layouts.
const (
	LayoutGrouped ExportLayout = iota
	LayoutFlat
	LayoutSingle
)

func (l ExportLayout) String() string {
	switch l {
	case LayoutGrouped:
		return "grouped"
	case LayoutFlat:
		return "flat"
	case LayoutSingle:
		return "single"
	}
	return fmt.Sprintf("ExportLayout(%d)", int(l))
}

// ParseLayout accepts the names printed by ExportLayout.String.
func ParseLayout(s string) (ExportLayout, error) {
	switch strings.ToLower(s) {
	case "grouped", "":
		return LayoutGrouped, nil
	case "flat":
		return LayoutFlat, nil
	case "single":
		return LayoutSingle, nil
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// LineEnding selects the line terminator of exported files.
type LineEnding int

// Line endings. CRLF matches what the editor itself writes.
const (
	CRLF LineEnding = iota
	LF
)

func (le LineEnding) String() string {
	if le == LF {
		return "lf"
	}
	return "crlf"
}

// ParseLineEnding accepts "crlf" and "lf".
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(s) {
	case "crlf", "":
		return CRLF, nil
	case "lf":
		return LF, nil
	}
	return 0, fmt.Errorf("unknown line ending %q", s)
}

func (le LineEnding) seq() string {
	if le == LF {
		return "\n"
	}
	return "\r\n"
}

// ExportOptions controls Export. The zero value is a grouped CRLF export
// without labels.
type ExportOptions struct {
	Layout      ExportLayout
	LineEndings LineEnding
	Labels      bool // single layout only: banner before each script
}

// NormalizeLineEndings rewrites every line break in s to le. Mixed input
// is fine: both "\r\n" and "\n" are recognised.
func NormalizeLineEndings(s string, le LineEnding) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if le == CRLF {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}

const (
	encodingLine = "# encoding: UTF-8"
	groupMarker  = "▼"
	manifestName = ".manifest.json"
	rbExt        = ".rb"
)

// manifest records how an export maps back onto a ScriptSet.
type manifest struct {
	Layout      string          `json:"layout"`
	LineEndings string          `json:"line_endings"`
	Scripts     []manifestEntry `json:"scripts"`
}

// manifestEntry is one script in load order. File is empty for scripts
// that were not written out, in which case Body carries what there was.
type manifestEntry struct {
	Name string `json:"name"`
	File string `json:"file,omitempty"`
	Body string `json:"body,omitempty"`
}

// groupName reports whether name is a group marker and returns the text
// after the marker glyph and any whitespace.
func groupName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, groupMarker)
	if !ok {
		return "", false
	}
	return strings.TrimLeft(rest, " \t\r\n\f\v"), true
}

// Export writes set below dest according to opts. dest is a directory for
// the grouped and flat layouts and a file for the single layout.
func Export(set *ScriptSet, dest string, opts ExportOptions) error {
	switch opts.Layout {
	case LayoutGrouped, LayoutFlat:
		return exportTree(set, dest, opts)
	case LayoutSingle:
		return writePath(dest, singleFile(set, opts), false)
	}
	return fmt.Errorf("%w: layout %s", ErrUnsupported, opts.Layout)
}

func exportTree(set *ScriptSet, dest string, opts ExportOptions) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	m := manifest{
		Layout:      opts.Layout.String(),
		LineEndings: opts.LineEndings.String(),
		Scripts:     make([]manifestEntry, 0, len(set.Scripts)),
	}
	var paths []string

	err := withRoot(dest, func(root *os.Root) error {
		group := ""
		for _, s := range set.Scripts {
			entry := manifestEntry{Name: s.Name}
			rel, skip := "", false

			switch opts.Layout {
			case LayoutGrouped:
				if s.Name == "" && s.Body == "" {
					skip = true
					break
				}
				if g, ok := groupName(s.Name); ok {
					group = Fold(g)
					if group != "" {
						if err := root.MkdirAll(filepath.FromSlash(group), 0o755); err != nil {
							return err
						}
					}
					skip = true
					break
				}
				if name := Fold(s.Name); name != "" {
					rel = path.Join(group, name)
				}
			case LayoutFlat:
				if s.Body == "" {
					skip = true
					break
				}
				rel = Fold(s.Name)
			}

			// Names that fold to nothing have no file to live in.
			if skip || rel == "" || rel == "." {
				entry.Body = s.Body
				m.Scripts = append(m.Scripts, entry)
				continue
			}

			entry.File = rel + rbExt
			if err := writeScript(root, entry.File, s.Body, opts.LineEndings); err != nil {
				return fmt.Errorf("script %q: %w", s.Name, err)
			}
			m.Scripts = append(m.Scripts, entry)
			paths = append(paths, rel)
		}

		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		return writeFile(root, manifestName, data, false)
	})
	if err != nil {
		return err
	}

	dest = filepath.Clean(dest)
	return writePath(dest+rbExt, indexFile(filepath.Base(dest), paths, opts.LineEndings), false)
}

// writeScript writes one body under root, creating parent directories
// for names that folded to a nested path.
func writeScript(root *os.Root, rel, body string, le LineEnding) error {
	name := filepath.FromSlash(rel)
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	buf.WriteString(encodingLine)
	buf.WriteString(le.seq())
	buf.WriteString(NormalizeLineEndings(body, le))
	return writeFile(root, name, buf.Bytes(), false)
}

func indexFile(base string, paths []string, le LineEnding) []byte {
	var buf bytes.Buffer
	buf.WriteString(encodingLine)
	buf.WriteString(le.seq())
	for _, p := range paths {
		fmt.Fprintf(&buf, "require_relative '%s/%s'%s", base, p, le.seq())
	}
	return buf.Bytes()
}

func singleFile(set *ScriptSet, opts ExportOptions) []byte {
	nl := opts.LineEndings.seq()
	var buf bytes.Buffer
	buf.WriteString(encodingLine)
	buf.WriteString(nl)
	for _, s := range set.Scripts {
		if opts.Labels {
			buf.WriteString(nl)
			buf.WriteString("#---> ")
			buf.WriteString(s.Name)
			buf.WriteString(" <---")
			buf.WriteString(nl)
			buf.WriteString(nl)
		}
		buf.WriteString(NormalizeLineEndings(s.Body, opts.LineEndings))
		buf.WriteString(nl)
	}
	return buf.Bytes()
}

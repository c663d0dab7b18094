// File primitives.
//
// All access goes through an os.Root so that file names taken from a
// schema or a manifest cannot escape the directory they belong to.
// Writes never truncate the target in place: the bytes go to a sibling
// .tmp file which is optionally synced and then renamed over the target.
// A crash mid-write leaves the previous file intact and at worst an
// orphaned .tmp, which the next write to the same name overwrites.
package rvdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// withRoot opens dir as a root for the duration of fn.
func withRoot(dir string, fn func(root *os.Root) error) error {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()
	return fn(root)
}

// readFile reads a whole file below root.
func readFile(root *os.Root, name string) ([]byte, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeFile replaces name below root with data via a temp file and rename.
func writeFile(root *os.Root, name string, data []byte, sync bool) error {
	tmp := name + ".tmp"
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if err := fill(f, data, sync); err != nil {
		root.Remove(tmp)
		return err
	}
	if err := root.Rename(tmp, name); err != nil {
		root.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// fill writes data to f and always closes it.
func fill(f *os.File, data []byte, sync bool) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if sync {
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// readPath reads the file at path.
func readPath(path string) ([]byte, error) {
	var data []byte
	err := withRoot(filepath.Dir(path), func(root *os.Root) error {
		var err error
		data, err = readFile(root, filepath.Base(path))
		return err
	})
	return data, err
}

// writePath atomically replaces the file at path.
func writePath(path string, data []byte, sync bool) error {
	return withRoot(filepath.Dir(path), func(root *os.Root) error {
		return writeFile(root, filepath.Base(path), data, sync)
	})
}

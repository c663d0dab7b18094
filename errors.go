// Package rvdata reads and writes RPG Maker VX Ace project data: the
// Marshal-encoded record files under Data/ and the compressed script
// bundle that sits beside them.
//
// Every file in a project is a Ruby Marshal 4.8 stream. Decode turns one
// into a graph of *Value and Encode turns it back. Collection layers an
// id-indexed sparse array on top of that so that position in the file
// array always equals the record id. Database groups the twelve
// collections and the System record, and ScriptSet handles the
// zlib-compressed script tuples. Export and Import map a ScriptSet to and
// from an editable tree of .rb files.
package rvdata

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// distinguish malformed input (ErrFormat) from a kind mismatch (ErrType).
// Errors from the os package are wrapped, never replaced, so
// errors.Is(err, fs.ErrNotExist) keeps working.
var (
	ErrFormat       = errors.New("malformed data")
	ErrType         = errors.New("unexpected record kind")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrDecompress   = errors.New("decompression failed")
	ErrCorruptTable = errors.New("corrupt user data payload")
	ErrAlgorithm    = errors.New("unknown hash algorithm")
)

// Script tags.
//
// Each entry of the script bundle starts with an integer the engine
// writes but, as far as anyone has observed, never checks. We derive it
// from the script body so that saving the same body twice gives the same
// tag. Three algorithms are supported, selectable via Config.TagAlgorithm.
package rvdata

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// tagMask keeps tags inside the fixnum range so they encode as 'i'.
const tagMask = fixnumMax

// ScriptTag hashes a script body to a non-negative 30-bit tag. It returns
// -1 for an unknown algorithm.
func ScriptTag(body []byte, alg int) int64 {
	var h uint64
	switch alg {
	case AlgXXHash3:
		h = xxh3.Hash(body)
	case AlgFNV1a:
		f := fnv.New64a()
		f.Write(body)
		h = f.Sum64()
	case AlgBlake2b:
		sum, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		sum.Write(body)
		h = binary.BigEndian.Uint64(sum.Sum(nil))
	default:
		return -1
	}
	return int64(h & tagMask)
}

// Marshal 4.8 stream encoding.
//
// The encoder numbers values exactly as the decoder does so that it can
// emit '@' links when the same *Value is reached twice. This keeps shared
// records shared and lets cyclic graphs terminate. Repeated symbols are
// written as ';' links.
package rvdata

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Fixnums on the wire are limited to 31 bits; anything wider is a bignum.
const (
	fixnumMin = -1 << 30
	fixnumMax = 1<<30 - 1
)

type encoder struct {
	buf     []byte
	symbols map[string]int
	objects map[*Value]int
	count   int // next object number
}

// Encode serialises v as a Marshal 4.8 stream. The output is
// deterministic for a given graph.
func Encode(v *Value) ([]byte, error) {
	e := &encoder{
		buf:     []byte{MarshalMajor, MarshalMinor},
		symbols: make(map[string]int),
		objects: make(map[*Value]int),
	}
	if err := e.value(v); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// long writes a variable-width integer, the inverse of decoder.long.
func (e *encoder) long(x int64) {
	switch {
	case x == 0:
		e.buf = append(e.buf, 0)
		return
	case 0 < x && x < 123:
		e.buf = append(e.buf, byte(x+5))
		return
	case -124 < x && x < 0:
		e.buf = append(e.buf, byte((x-5)&0xff))
		return
	}

	var tmp [9]byte
	for i := 1; i < len(tmp); i++ {
		tmp[i] = byte(x & 0xff)
		x >>= 8
		if x == 0 {
			tmp[0] = byte(i)
			e.buf = append(e.buf, tmp[:i+1]...)
			return
		}
		if x == -1 {
			tmp[0] = byte(-i)
			e.buf = append(e.buf, tmp[:i+1]...)
			return
		}
	}
}

func (e *encoder) bytes(b []byte) {
	e.long(int64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) symbol(name string) {
	if idx, ok := e.symbols[name]; ok {
		e.buf = append(e.buf, tagSymlink)
		e.long(int64(idx))
		return
	}
	e.symbols[name] = len(e.symbols)

	if isASCII(name) {
		e.buf = append(e.buf, tagSymbol)
		e.bytes([]byte(name))
		return
	}
	e.buf = append(e.buf, tagIvar, tagSymbol)
	e.bytes([]byte(name))
	e.long(1)
	e.symbol(ivarE)
	e.buf = append(e.buf, tagTrue)
}

// link writes an '@' reference if v was already written, otherwise
// numbers it and reports false.
func (e *encoder) link(v *Value) bool {
	if idx, ok := e.objects[v]; ok {
		e.buf = append(e.buf, tagLink)
		e.long(int64(idx))
		return true
	}
	e.objects[v] = e.count
	e.count++
	return false
}

func (e *encoder) value(v *Value) error {
	switch v.Kind() {
	case KindNil:
		e.buf = append(e.buf, tagNil)
	case KindBool:
		if v.boolVal {
			e.buf = append(e.buf, tagTrue)
		} else {
			e.buf = append(e.buf, tagFalse)
		}
	case KindInt:
		if v.bigVal == nil && v.intVal >= fixnumMin && v.intVal <= fixnumMax {
			e.buf = append(e.buf, tagFixnum)
			e.long(v.intVal)
			return nil
		}
		if e.link(v) {
			return nil
		}
		e.bignum(v)
	case KindFloat:
		if e.link(v) {
			return nil
		}
		e.buf = append(e.buf, tagFloat)
		e.bytes([]byte(formatFloat(v.floatVal)))
	case KindString:
		if e.link(v) {
			return nil
		}
		e.string(v)
	case KindSymbol:
		e.symbol(v.name)
	case KindArray:
		if e.link(v) {
			return nil
		}
		e.buf = append(e.buf, tagArray)
		e.long(int64(len(v.items)))
		for _, item := range v.items {
			if err := e.value(item); err != nil {
				return err
			}
		}
	case KindHash:
		if e.link(v) {
			return nil
		}
		if v.def != nil {
			e.buf = append(e.buf, tagHashDef)
		} else {
			e.buf = append(e.buf, tagHash)
		}
		e.long(int64(len(v.pairs)))
		for _, p := range v.pairs {
			if err := e.value(p.Key); err != nil {
				return err
			}
			if err := e.value(p.Value); err != nil {
				return err
			}
		}
		if v.def != nil {
			return e.value(v.def)
		}
	case KindObject, KindStruct:
		if v.name == "" {
			return fmt.Errorf("%w: %s without class name", ErrFormat, v.kind)
		}
		if e.link(v) {
			return nil
		}
		if v.kind == KindObject {
			e.buf = append(e.buf, tagObject)
		} else {
			e.buf = append(e.buf, tagStruct)
		}
		e.symbol(v.name)
		e.long(int64(len(v.fields)))
		for _, f := range v.fields {
			e.symbol(f.Name)
			if err := e.value(f.Value); err != nil {
				return err
			}
		}
	case KindUserData:
		if v.name == "" {
			return fmt.Errorf("%w: user data without class name", ErrFormat)
		}
		if idx, ok := e.objects[v]; ok {
			e.buf = append(e.buf, tagLink)
			e.long(int64(idx))
			return nil
		}
		e.buf = append(e.buf, tagUserDef)
		e.symbol(v.name)
		e.bytes(v.data)
		// Numbered after the payload, matching the decoder.
		e.objects[v] = e.count
		e.count++
	default:
		return fmt.Errorf("%w: cannot encode kind %d", ErrFormat, v.kind)
	}
	return nil
}

func (e *encoder) bignum(v *Value) {
	b := v.Big()
	e.buf = append(e.buf, tagBignum)
	if b.Sign() < 0 {
		e.buf = append(e.buf, '-')
	} else {
		e.buf = append(e.buf, '+')
	}
	be := b.Bytes() // magnitude, big-endian
	n := len(be)
	if n%2 == 1 {
		n++
	}
	e.long(int64(n / 2))
	for i := range n {
		j := len(be) - 1 - i
		if j >= 0 {
			e.buf = append(e.buf, be[j])
		} else {
			e.buf = append(e.buf, 0)
		}
	}
}

func (e *encoder) string(v *Value) {
	if v.enc == EncodingBinary {
		e.buf = append(e.buf, tagString)
		e.bytes(v.data)
		return
	}
	e.buf = append(e.buf, tagIvar, tagString)
	e.bytes(v.data)
	e.long(1)
	switch v.enc {
	case EncodingUTF8:
		e.symbol(ivarE)
		e.buf = append(e.buf, tagTrue)
	case EncodingASCII:
		e.symbol(ivarE)
		e.buf = append(e.buf, tagFalse)
	default:
		e.symbol(ivarEncoding)
		// The encoding name is itself a numbered string.
		e.count++
		e.buf = append(e.buf, tagString)
		e.bytes([]byte(v.enc))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

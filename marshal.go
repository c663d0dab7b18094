// Marshal 4.8 stream decoding.
//
// A stream is a two byte version header followed by one value. Each value
// starts with a type byte. Integers and lengths use a variable-width
// "long": one byte for small magnitudes, otherwise a signed byte count
// followed by little-endian bytes.
//
// Two back-reference tables are kept while decoding. Symbols are numbered
// in order of first appearance and re-used with ';'. Every other non
// immediate value (strings, floats, bignums, arrays, hashes, objects,
// structs, user data) is numbered in order of appearance and re-used with
// '@'. A container is numbered before its children are read, so a child
// may refer back to its parent.
package rvdata

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
)

// Version header written at the start of every stream.
const (
	MarshalMajor = 4
	MarshalMinor = 8
)

// Type bytes.
const (
	tagNil       = '0'
	tagTrue      = 'T'
	tagFalse     = 'F'
	tagFixnum    = 'i'
	tagBignum    = 'l'
	tagFloat     = 'f'
	tagString    = '"'
	tagSymbol    = ':'
	tagSymlink   = ';'
	tagArray     = '['
	tagHash      = '{'
	tagHashDef   = '}'
	tagObject    = 'o'
	tagStruct    = 'S'
	tagUserDef   = 'u'
	tagIvar      = 'I'
	tagLink      = '@'
	ivarEncoding = "encoding"
	ivarE        = "E"
)

// maxDepth bounds container nesting while decoding.
const maxDepth = 10000

type decoder struct {
	buf     []byte
	pos     int
	depth   int
	symbols []string
	objects []*Value
}

// Decode parses a Marshal stream. Truncated input, an unknown type byte,
// a wrong version header or a dangling back-reference all wrap ErrFormat.
// Bytes after the root value are ignored.
func Decode(data []byte) (*Value, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: missing version header", ErrFormat)
	}
	if data[0] != MarshalMajor || data[1] != MarshalMinor {
		return nil, fmt.Errorf("%w: version %d.%d, want %d.%d", ErrFormat, data[0], data[1], MarshalMajor, MarshalMinor)
	}
	d := &decoder{buf: data, pos: 2}
	return d.value()
}

func (d *decoder) truncated() error {
	return fmt.Errorf("%w: truncated at offset %d", ErrFormat, d.pos)
}

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, d.truncated()
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// long reads a variable-width integer.
func (d *decoder) long() (int64, error) {
	b, err := d.byte()
	if err != nil {
		return 0, err
	}
	c := int8(b)
	switch {
	case c == 0:
		return 0, nil
	case c > 4:
		return int64(c) - 5, nil
	case c < -4:
		return int64(c) + 5, nil
	}

	n := int(c)
	neg := n < 0
	if neg {
		n = -n
	}
	if d.pos+n > len(d.buf) {
		return 0, d.truncated()
	}
	var x int64
	if neg {
		x = -1
	}
	for i := range n {
		x &^= 0xff << (8 * i)
		x |= int64(d.buf[d.pos+i]) << (8 * i)
	}
	d.pos += n
	return x, nil
}

// length reads a non-negative count that must fit in the remaining input,
// given each element takes at least min bytes.
func (d *decoder) length(min int) (int, error) {
	n, err := d.long()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d at offset %d", ErrFormat, n, d.pos)
	}
	if n > int64(len(d.buf)-d.pos)/int64(min) {
		return 0, d.truncated()
	}
	return int(n), nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.length(1)
	if err != nil {
		return nil, err
	}
	b := slices.Clone(d.buf[d.pos : d.pos+n])
	d.pos += n
	return b, nil
}

// register numbers a non-immediate value for later '@' links.
func (d *decoder) register(v *Value) *Value {
	d.objects = append(d.objects, v)
	return v
}

// symbol reads a ':' or ';' symbol, or an 'I'-wrapped ':' symbol.
func (d *decoder) symbol() (string, error) {
	tag, err := d.byte()
	if err != nil {
		return "", err
	}
	switch tag {
	case tagSymbol:
		return d.symreal(false)
	case tagSymlink:
		return d.symlink()
	case tagIvar:
		inner, err := d.byte()
		if err != nil {
			return "", err
		}
		if inner != tagSymbol {
			return "", fmt.Errorf("%w: expected symbol at offset %d, got %q", ErrFormat, d.pos-1, inner)
		}
		return d.symreal(true)
	default:
		return "", fmt.Errorf("%w: expected symbol at offset %d, got %q", ErrFormat, d.pos-1, tag)
	}
}

func (d *decoder) symreal(ivars bool) (string, error) {
	b, err := d.bytes()
	if err != nil {
		return "", err
	}
	name := string(b)
	d.symbols = append(d.symbols, name)
	if ivars {
		// Symbol encodings are implied by their bytes; skip them.
		if _, err := d.ivars(); err != nil {
			return "", err
		}
	}
	return name, nil
}

func (d *decoder) symlink() (string, error) {
	idx, err := d.long()
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= int64(len(d.symbols)) {
		return "", fmt.Errorf("%w: symbol link %d out of range", ErrFormat, idx)
	}
	return d.symbols[idx], nil
}

// ivars reads an instance variable list and returns the encoding it
// names, if any.
func (d *decoder) ivars() (string, error) {
	n, err := d.length(2)
	if err != nil {
		return "", err
	}
	enc := EncodingBinary
	for range n {
		name, err := d.symbol()
		if err != nil {
			return "", err
		}
		val, err := d.value()
		if err != nil {
			return "", err
		}
		switch name {
		case ivarE:
			if val.Bool() {
				enc = EncodingUTF8
			} else {
				enc = EncodingASCII
			}
		case ivarEncoding:
			enc = val.Text()
		}
	}
	return enc, nil
}

func (d *decoder) value() (*Value, error) {
	if d.depth >= maxDepth {
		return nil, fmt.Errorf("%w: nesting too deep at offset %d", ErrFormat, d.pos)
	}
	d.depth++
	defer func() { d.depth-- }()

	tag, err := d.byte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagNil:
		return Nil(), nil
	case tagTrue:
		return Bool(true), nil
	case tagFalse:
		return Bool(false), nil
	case tagFixnum:
		i, err := d.long()
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	case tagBignum:
		return d.bignum()
	case tagFloat:
		return d.float()
	case tagString:
		b, err := d.bytes()
		if err != nil {
			return nil, err
		}
		return d.register(Bytes(b)), nil
	case tagSymbol:
		name, err := d.symreal(false)
		if err != nil {
			return nil, err
		}
		return Symbol(name), nil
	case tagSymlink:
		name, err := d.symlink()
		if err != nil {
			return nil, err
		}
		return Symbol(name), nil
	case tagArray:
		return d.array()
	case tagHash, tagHashDef:
		return d.hash(tag == tagHashDef)
	case tagObject:
		return d.object(KindObject)
	case tagStruct:
		return d.object(KindStruct)
	case tagUserDef:
		return d.userdef(false)
	case tagIvar:
		return d.ivar()
	case tagLink:
		idx, err := d.long()
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(d.objects)) {
			return nil, fmt.Errorf("%w: object link %d out of range", ErrFormat, idx)
		}
		return d.objects[idx], nil
	default:
		return nil, fmt.Errorf("%w: unknown type byte %q at offset %d", ErrFormat, tag, d.pos-1)
	}
}

func (d *decoder) bignum() (*Value, error) {
	sign, err := d.byte()
	if err != nil {
		return nil, err
	}
	if sign != '+' && sign != '-' {
		return nil, fmt.Errorf("%w: bad bignum sign %q", ErrFormat, sign)
	}
	words, err := d.length(2)
	if err != nil {
		return nil, err
	}
	n := words * 2
	if d.pos+n > len(d.buf) {
		return nil, d.truncated()
	}
	be := make([]byte, n)
	for i := range n {
		be[n-1-i] = d.buf[d.pos+i]
	}
	d.pos += n
	b := new(big.Int).SetBytes(be)
	if sign == '-' {
		b.Neg(b)
	}
	return d.register(BigInt(b)), nil
}

func (d *decoder) float() (*Value, error) {
	b, err := d.bytes()
	if err != nil {
		return nil, err
	}
	// Old writers append a NUL and raw mantissa bytes after the text.
	if i := slices.Index(b, 0); i >= 0 {
		b = b[:i]
	}
	var f float64
	switch s := string(b); s {
	case "nan":
		f = math.NaN()
	case "inf":
		f = math.Inf(1)
	case "-inf":
		f = math.Inf(-1)
	default:
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad float %q", ErrFormat, s)
		}
	}
	return d.register(Float(f)), nil
}

func (d *decoder) array() (*Value, error) {
	n, err := d.length(1)
	if err != nil {
		return nil, err
	}
	v := d.register(&Value{kind: KindArray, items: make([]*Value, 0, n)})
	for range n {
		item, err := d.value()
		if err != nil {
			return nil, err
		}
		v.items = append(v.items, item)
	}
	return v, nil
}

func (d *decoder) hash(withDefault bool) (*Value, error) {
	n, err := d.length(2)
	if err != nil {
		return nil, err
	}
	v := d.register(&Value{kind: KindHash, pairs: make([]Pair, 0, n)})
	for range n {
		k, err := d.value()
		if err != nil {
			return nil, err
		}
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		v.pairs = append(v.pairs, Pair{Key: k, Value: val})
	}
	if withDefault {
		if v.def, err = d.value(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (d *decoder) object(kind Kind) (*Value, error) {
	class, err := d.symbol()
	if err != nil {
		return nil, err
	}
	v := d.register(&Value{kind: kind, name: class})
	n, err := d.length(2)
	if err != nil {
		return nil, err
	}
	v.fields = make([]Field, 0, n)
	for range n {
		name, err := d.symbol()
		if err != nil {
			return nil, err
		}
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		v.fields = append(v.fields, Field{Name: name, Value: val})
	}
	return v, nil
}

// userdef reads a 'u' body. User data is numbered only after its payload
// and any instance variables have been read.
func (d *decoder) userdef(ivars bool) (*Value, error) {
	class, err := d.symbol()
	if err != nil {
		return nil, err
	}
	data, err := d.bytes()
	if err != nil {
		return nil, err
	}
	if ivars {
		if _, err := d.ivars(); err != nil {
			return nil, err
		}
	}
	return d.register(UserData(class, data)), nil
}

// ivar reads an 'I' wrapper: the wrapped value followed by its instance
// variables. Only string encodings are kept.
func (d *decoder) ivar() (*Value, error) {
	if d.pos >= len(d.buf) {
		return nil, d.truncated()
	}
	switch d.buf[d.pos] {
	case tagUserDef:
		d.pos++
		return d.userdef(true)
	case tagSymbol:
		d.pos++
		name, err := d.symreal(true)
		if err != nil {
			return nil, err
		}
		return Symbol(name), nil
	}

	v, err := d.value()
	if err != nil {
		return nil, err
	}
	enc, err := d.ivars()
	if err != nil {
		return nil, err
	}
	if v.kind == KindString {
		v.enc = enc
	}
	return v, nil
}

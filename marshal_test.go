// Marshal codec tests.
//
// Every project file goes through Decode on load and Encode on save, so
// the codec has to agree with the engine byte for byte on the small
// things (integer widths, string encodings, symbol links) and has to keep
// object identity intact on the large things (shared records, cycles).
// The fixed byte strings below are what the engine itself writes for the
// same values.
package rvdata

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"
)

func hdr(b ...byte) []byte {
	return append([]byte{MarshalMajor, MarshalMinor}, b...)
}

// TestEncodeKnownBytes pins the wire form of simple values. Any drift
// here produces files the editor refuses to open.
func TestEncodeKnownBytes(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want []byte
	}{
		{"nil", Nil(), hdr('0')},
		{"nil pointer", nil, hdr('0')},
		{"true", Bool(true), hdr('T')},
		{"false", Bool(false), hdr('F')},
		{"zero", Int(0), hdr('i', 0x00)},
		{"one", Int(1), hdr('i', 0x06)},
		{"minus one", Int(-1), hdr('i', 0xfa)},
		{"122", Int(122), hdr('i', 0x7f)},
		{"123", Int(123), hdr('i', 0x01, 0x7b)},
		{"-123", Int(-123), hdr('i', 0x80)},
		{"-124", Int(-124), hdr('i', 0xff, 0x84)},
		{"256", Int(256), hdr('i', 0x02, 0x00, 0x01)},
		{"fixnum max", Int(1<<30 - 1), hdr('i', 0x04, 0xff, 0xff, 0xff, 0x3f)},
		{"fixnum min", Int(-1 << 30), hdr('i', 0xfc, 0x00, 0x00, 0x00, 0xc0)},
		{"bignum above", Int(1 << 30), hdr('l', '+', 0x07, 0x00, 0x00, 0x00, 0x40)},
		{"bignum below", Int(-1<<30 - 1), hdr('l', '-', 0x07, 0x01, 0x00, 0x00, 0x40)},
		{"float", Float(1.5), hdr('f', 0x08, '1', '.', '5')},
		{"utf8 string", Str("abc"), hdr('I', '"', 0x08, 'a', 'b', 'c', 0x06, ':', 0x06, 'E', 'T')},
		{"ascii string", Text([]byte("ab"), EncodingASCII), hdr('I', '"', 0x07, 'a', 'b', 0x06, ':', 0x06, 'E', 'F')},
		{"binary string", Bytes([]byte{0xff}), hdr('"', 0x06, 0xff)},
		{"symbol", Symbol("foo"), hdr(':', 0x08, 'f', 'o', 'o')},
		{"symbol link", Array(Symbol("a"), Symbol("a")), hdr('[', 0x07, ':', 0x06, 'a', ';', 0x00)},
		{"array", Array(Int(1), Int(2)), hdr('[', 0x07, 'i', 0x06, 'i', 0x07)},
		{"empty hash", Hash(), hdr('{', 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode = % x, want % x", got, tt.want)
			}
		})
	}
}

// TestDecodeKnownBytes reads the same fixtures back.
func TestDecodeKnownBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want *Value
	}{
		{"nil", hdr('0'), Nil()},
		{"int", hdr('i', 0x01, 0x7b), Int(123)},
		{"negative int", hdr('i', 0xff, 0x84), Int(-124)},
		{"four byte negative", hdr('i', 0xfc, 0x00, 0x00, 0x00, 0xc0), Int(-1 << 30)},
		{"bignum", hdr('l', '+', 0x07, 0x00, 0x00, 0x00, 0x40), Int(1 << 30)},
		{"utf8 string", hdr('I', '"', 0x08, 'a', 'b', 'c', 0x06, ':', 0x06, 'E', 'T'), Str("abc")},
		{"binary string", hdr('"', 0x06, 0xff), Bytes([]byte{0xff})},
		{"float with trailing nul", hdr('f', 0x09, '1', '.', '5', 0x00), Float(1.5)},
		{"trailing bytes ignored", hdr('0', '0', '0'), Nil()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Decode = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestRoundTrip encodes a value, decodes the result and checks the two
// graphs are equal.
func TestRoundTrip(t *testing.T) {
	hash := Hash(
		Pair{Key: Symbol("a"), Value: Int(1)},
		Pair{Key: Str("b"), Value: Array()},
	)
	withDefault := Hash(Pair{Key: Int(1), Value: Int(2)})
	withDefault.SetDefault(Int(0))

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name string
		v    *Value
	}{
		{"int64 max", Int(math.MaxInt64)},
		{"int64 min", Int(math.MinInt64)},
		{"huge positive", BigInt(huge)},
		{"huge negative", BigInt(new(big.Int).Neg(huge))},
		{"float zero", Float(0)},
		{"float negative", Float(-0.25)},
		{"float large", Float(1e100)},
		{"float inf", Float(math.Inf(1))},
		{"float -inf", Float(math.Inf(-1))},
		{"float nan", Float(math.NaN())},
		{"empty string", Str("")},
		{"unicode string", Str("ハロルド")},
		{"other encoding", Text([]byte{0x82, 0xa0}, "Shift_JIS")},
		{"unicode symbol", Symbol("名前")},
		{"hash", hash},
		{"hash with default", withDefault},
		{"object", Object("RPG::Actor",
			Field{Name: "@id", Value: Int(1)},
			Field{Name: "@name", Value: Str("Eric")},
			Field{Name: "@note", Value: Str("")},
		)},
		{"struct", Struct("Point", Field{Name: "x", Value: Int(1)}, Field{Name: "y", Value: Int(2)})},
		{"user data", UserData("Color", make([]byte, 32))},
		{"nested", Array(Array(Array(Nil())), Hash(Pair{Key: Symbol("k"), Value: Symbol("k")}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !Equal(got, tt.v) {
				t.Errorf("round trip = %#v, want %#v", got, tt.v)
			}
			again, err := Encode(got)
			if err != nil {
				t.Fatalf("re-Encode: %v", err)
			}
			if !bytes.Equal(again, data) {
				t.Errorf("re-encoding changed bytes:\n got % x\nwant % x", again, data)
			}
		})
	}
}

// TestSharedValueStaysShared verifies that a value reachable twice is
// written once and linked the second time, and that decoding hands back
// one pointer for both positions. Records that share a sub-object in the
// editor must still share it after a save.
func TestSharedValueStaysShared(t *testing.T) {
	s := Str("x")
	data, err := Encode(Array(s, s))
	if err != nil {
		t.Fatal(err)
	}
	want := hdr('[', 0x07, 'I', '"', 0x06, 'x', 0x06, ':', 0x06, 'E', 'T', '@', 0x06)
	if !bytes.Equal(data, want) {
		t.Fatalf("Encode = % x, want % x", data, want)
	}

	v, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Index(0) != v.Index(1) {
		t.Error("decoded elements are distinct values, want the same pointer")
	}
}

// TestCycle verifies that an array containing itself encodes to a
// finite stream and decodes back into a cycle.
func TestCycle(t *testing.T) {
	a := Array()
	a.Append(a)

	data, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	if want := hdr('[', 0x06, '@', 0x00); !bytes.Equal(data, want) {
		t.Fatalf("Encode = % x, want % x", data, want)
	}

	v, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Index(0) != v {
		t.Error("decoded array does not contain itself")
	}
	if !Equal(v, a) {
		t.Error("cyclic graphs not equal")
	}
}

// TestObjectNumbering checks the two numbering rules that are easy to get
// wrong: user data takes its number after its payload, and an encoding
// name string takes a number of its own. A later link must still land on
// the right value.
func TestObjectNumbering(t *testing.T) {
	u := UserData("Table", []byte{1, 2})
	sjis := Text([]byte("a"), "Shift_JIS")
	s := Str("tail")

	root := Array(u, sjis, s, s, u)
	data, err := Encode(root)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Index(2) != v.Index(3) {
		t.Error("string link resolved to the wrong object")
	}
	if v.Index(0) != v.Index(4) {
		t.Error("user data link resolved to the wrong object")
	}
	if got := v.Index(1).Encoding(); got != "Shift_JIS" {
		t.Errorf("encoding = %q, want Shift_JIS", got)
	}
}

// TestDecodeMalformed feeds broken streams to Decode. Each must fail with
// ErrFormat rather than panic or allocate without bound.
func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{4}},
		{"wrong version", []byte{4, 9, '0'}},
		{"no value", hdr()},
		{"unknown tag", hdr('~')},
		{"truncated array", hdr('[', 0x07, 'i', 0x06)},
		{"truncated string", hdr('"', 0x0a, 'a')},
		{"truncated long", hdr('i', 0x02, 0x01)},
		{"negative length", hdr('[', 0xfa)},
		{"huge length", hdr('[', 0x04, 0xff, 0xff, 0xff, 0x7f)},
		{"dangling link", hdr('@', 0x06)},
		{"dangling symlink", hdr(';', 0x00)},
		{"bad bignum sign", hdr('l', '*', 0x06, 0x01, 0x00)},
		{"bad float", hdr('f', 0x06, 'x')},
		{"object without symbol", hdr('o', 'i', 0x00)},
		{"deep nesting", hdr(append(bytes.Repeat([]byte{'[', 0x06}, 3_000_000), '0')...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Decode err = %v, want ErrFormat", err)
			}
		})
	}
}

// TestDecodeNestingLimit decodes arrays nested right up to the limit and
// one level past it.
func TestDecodeNestingLimit(t *testing.T) {
	nested := func(levels int) []byte {
		return hdr(append(bytes.Repeat([]byte{'[', 0x06}, levels), '0')...)
	}

	v, err := Decode(nested(maxDepth - 1))
	if err != nil {
		t.Fatalf("Decode at limit: %v", err)
	}
	for range maxDepth - 1 {
		v = v.Index(0)
	}
	if v.Kind() != KindNil {
		t.Errorf("innermost = %s, want nil", v.Kind())
	}

	if _, err := Decode(nested(maxDepth)); !errors.Is(err, ErrFormat) {
		t.Errorf("Decode past limit err = %v, want ErrFormat", err)
	}
}

// TestEncodeRejectsAnonymousObject verifies that an object without a
// class cannot be written; the reader would have nothing to instantiate.
func TestEncodeRejectsAnonymousObject(t *testing.T) {
	for _, v := range []*Value{Object(""), Struct(""), UserData("", nil)} {
		if _, err := Encode(v); !errors.Is(err, ErrFormat) {
			t.Errorf("Encode(%s) err = %v, want ErrFormat", v.Kind(), err)
		}
	}
}

// Built-in engine types stored as user data.
//
// Table, Color and Tone are written by their own dumpers rather than as
// plain objects, so in a decoded graph they appear as KindUserData values
// carrying a little-endian byte payload:
//
//	Table: int32 dims, xsize, ysize, zsize, size, then size x int16
//	Color: float64 red, green, blue, alpha
//	Tone:  float64 red, green, blue, gray
package rvdata

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Class names of the engine's user data types.
const (
	ClassTable = "Table"
	ClassColor = "Color"
	ClassTone  = "Tone"
)

const tableHeaderSize = 20

// Table is a dense 1-3 dimensional array of int16, used for map tiles,
// tileset flags and class parameter curves.
type Table struct {
	Dims    int
	X, Y, Z int
	Data    []int16
}

// NewTable creates a zeroed table. Sizes below 1 become 1. Dims counts
// the trailing sizes that are greater than 1, with a minimum of 1.
func NewTable(x, y, z int) *Table {
	x, y, z = max(x, 1), max(y, 1), max(z, 1)
	dims := 1
	switch {
	case z > 1:
		dims = 3
	case y > 1:
		dims = 2
	}
	return &Table{Dims: dims, X: x, Y: y, Z: z, Data: make([]int16, x*y*z)}
}

func (t *Table) index(x, y, z int) int {
	if x < 0 || y < 0 || z < 0 || x >= t.X || y >= t.Y || z >= t.Z {
		return -1
	}
	return x + t.X*(y+t.Y*z)
}

// Get returns the cell at (x, y, z), or 0 when out of range.
func (t *Table) Get(x, y, z int) int16 {
	i := t.index(x, y, z)
	if i < 0 {
		return 0
	}
	return t.Data[i]
}

// Set writes the cell at (x, y, z). Out of range writes are ignored.
func (t *Table) Set(x, y, z int, v int16) {
	if i := t.index(x, y, z); i >= 0 {
		t.Data[i] = v
	}
}

// Resize changes the dimensions, keeping the overlapping region.
func (t *Table) Resize(x, y, z int) {
	x, y, z = max(x, 1), max(y, 1), max(z, 1)
	data := make([]int16, x*y*z)
	for k := range min(t.Z, z) {
		for j := range min(t.Y, y) {
			src := t.X * (j + t.Y*k)
			dst := x * (j + y*k)
			copy(data[dst:dst+min(t.X, x)], t.Data[src:])
		}
	}
	t.X, t.Y, t.Z, t.Data = x, y, z, data
}

// Value encodes the table as user data.
func (t *Table) Value() *Value {
	buf := make([]byte, tableHeaderSize+2*len(t.Data))
	for i, n := range []int{t.Dims, t.X, t.Y, t.Z, len(t.Data)} {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(int32(n)))
	}
	for i, c := range t.Data {
		binary.LittleEndian.PutUint16(buf[tableHeaderSize+2*i:], uint16(c))
	}
	return UserData(ClassTable, buf)
}

// DecodeTable reads a Table from user data. A value of another class is
// ErrType; a payload whose size disagrees with its header is
// ErrCorruptTable.
func DecodeTable(v *Value) (*Table, error) {
	if v.Kind() != KindUserData || v.Class() != ClassTable {
		return nil, fmt.Errorf("%w: want %s user data, got %s %q", ErrType, ClassTable, v.Kind(), v.Class())
	}
	b := v.Bytes()
	if len(b) < tableHeaderSize {
		return nil, fmt.Errorf("%w: table header is %d bytes", ErrCorruptTable, len(b))
	}
	var h [5]int
	for i := range h {
		h[i] = int(int32(binary.LittleEndian.Uint32(b[4*i:])))
	}
	t := &Table{Dims: h[0], X: h[1], Y: h[2], Z: h[3]}
	size := h[4]
	if t.X < 0 || t.Y < 0 || t.Z < 0 || size != t.X*t.Y*t.Z || len(b) != tableHeaderSize+2*size {
		return nil, fmt.Errorf("%w: table %dx%dx%d size %d with %d payload bytes", ErrCorruptTable, t.X, t.Y, t.Z, size, len(b))
	}
	t.Data = make([]int16, size)
	for i := range t.Data {
		t.Data[i] = int16(binary.LittleEndian.Uint16(b[tableHeaderSize+2*i:]))
	}
	return t, nil
}

// Color is an RGBA colour with channels in 0..255.
type Color struct {
	Red, Green, Blue, Alpha float64
}

// NewColor creates a colour, clamping every channel to 0..255.
func NewColor(r, g, b, a float64) Color {
	return Color{clamp(r, 0, 255), clamp(g, 0, 255), clamp(b, 0, 255), clamp(a, 0, 255)}
}

// Value encodes the colour as user data.
func (c Color) Value() *Value {
	return UserData(ClassColor, packFloats(c.Red, c.Green, c.Blue, c.Alpha))
}

// DecodeColor reads a Color from user data, clamping out of range channels.
func DecodeColor(v *Value) (Color, error) {
	f, err := unpackFloats(v, ClassColor)
	if err != nil {
		return Color{}, err
	}
	return NewColor(f[0], f[1], f[2], f[3]), nil
}

// Tone is a screen tint: red, green and blue in -255..255, gray in 0..255.
type Tone struct {
	Red, Green, Blue, Gray float64
}

// NewTone creates a tone, clamping every channel to its range.
func NewTone(r, g, b, gray float64) Tone {
	return Tone{clamp(r, -255, 255), clamp(g, -255, 255), clamp(b, -255, 255), clamp(gray, 0, 255)}
}

// Value encodes the tone as user data.
func (t Tone) Value() *Value {
	return UserData(ClassTone, packFloats(t.Red, t.Green, t.Blue, t.Gray))
}

// DecodeTone reads a Tone from user data, clamping out of range channels.
func DecodeTone(v *Value) (Tone, error) {
	f, err := unpackFloats(v, ClassTone)
	if err != nil {
		return Tone{}, err
	}
	return NewTone(f[0], f[1], f[2], f[3]), nil
}

func packFloats(f ...float64) []byte {
	buf := make([]byte, 8*len(f))
	for i, x := range f {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	return buf
}

func unpackFloats(v *Value, class string) ([4]float64, error) {
	var f [4]float64
	if v.Kind() != KindUserData || v.Class() != class {
		return f, fmt.Errorf("%w: want %s user data, got %s %q", ErrType, class, v.Kind(), v.Class())
	}
	b := v.Bytes()
	if len(b) != 32 {
		return f, fmt.Errorf("%w: %s payload is %d bytes, want 32", ErrCorruptTable, class, len(b))
	}
	for i := range f {
		f[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return f, nil
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(x, hi))
}

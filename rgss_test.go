package rvdata

import (
	"errors"
	"slices"
	"testing"
)

func TestTableRoundTrip(t *testing.T) {
	tbl := NewTable(3, 2, 2)
	if tbl.Dims != 3 {
		t.Errorf("Dims = %d, want 3", tbl.Dims)
	}
	tbl.Set(0, 0, 0, 1)
	tbl.Set(2, 1, 1, -32768)
	tbl.Set(1, 1, 0, 32767)

	// Through the full codec, as it would be inside a map file.
	data, err := Encode(Array(tbl.Value()))
	if err != nil {
		t.Fatal(err)
	}
	v, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeTable(v.Index(0))
	if err != nil {
		t.Fatal(err)
	}

	if got.X != 3 || got.Y != 2 || got.Z != 2 || got.Dims != 3 {
		t.Errorf("sizes = %d %dx%dx%d", got.Dims, got.X, got.Y, got.Z)
	}
	if !slices.Equal(got.Data, tbl.Data) {
		t.Errorf("data = %v, want %v", got.Data, tbl.Data)
	}
	if got.Get(2, 1, 1) != -32768 {
		t.Errorf("Get(2,1,1) = %d", got.Get(2, 1, 1))
	}
}

func TestTableDims(t *testing.T) {
	tests := []struct {
		x, y, z int
		dims    int
	}{
		{10, 1, 1, 1},
		{10, 5, 1, 2},
		{10, 5, 3, 3},
		{0, 0, 0, 1},
	}
	for _, tt := range tests {
		if got := NewTable(tt.x, tt.y, tt.z).Dims; got != tt.dims {
			t.Errorf("NewTable(%d,%d,%d).Dims = %d, want %d", tt.x, tt.y, tt.z, got, tt.dims)
		}
	}
}

func TestTableOutOfRange(t *testing.T) {
	tbl := NewTable(2, 2, 1)
	tbl.Set(5, 0, 0, 9)
	tbl.Set(-1, 0, 0, 9)
	if slices.Contains(tbl.Data, 9) {
		t.Error("out of range Set wrote a cell")
	}
	if tbl.Get(2, 0, 0) != 0 {
		t.Error("out of range Get returned a value")
	}
}

// TestTableResize keeps the overlapping region and zero-fills the rest.
func TestTableResize(t *testing.T) {
	tbl := NewTable(2, 2, 1)
	tbl.Set(0, 0, 0, 1)
	tbl.Set(1, 0, 0, 2)
	tbl.Set(0, 1, 0, 3)
	tbl.Set(1, 1, 0, 4)

	tbl.Resize(3, 1, 1)
	if !slices.Equal(tbl.Data, []int16{1, 2, 0}) {
		t.Errorf("shrunk data = %v, want [1 2 0]", tbl.Data)
	}

	tbl.Resize(3, 2, 1)
	if !slices.Equal(tbl.Data, []int16{1, 2, 0, 0, 0, 0}) {
		t.Errorf("grown data = %v", tbl.Data)
	}
}

func TestDecodeTableErrors(t *testing.T) {
	good := NewTable(2, 2, 1).Value().Bytes()

	tests := []struct {
		name string
		v    *Value
		want error
	}{
		{"wrong class", UserData("Color", good), ErrType},
		{"not user data", Str("Table"), ErrType},
		{"short header", UserData(ClassTable, good[:10]), ErrCorruptTable},
		{"short payload", UserData(ClassTable, good[:len(good)-2]), ErrCorruptTable},
		{"long payload", UserData(ClassTable, append(slices.Clone(good), 0, 0)), ErrCorruptTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTable(tt.v); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestColorTone(t *testing.T) {
	c := NewColor(300, -5, 128.5, 255)
	if c != (Color{255, 0, 128.5, 255}) {
		t.Errorf("NewColor clamped to %+v", c)
	}
	gotC, err := DecodeColor(c.Value())
	if err != nil || gotC != c {
		t.Errorf("DecodeColor = %+v, %v", gotC, err)
	}

	tone := NewTone(-300, 68, 300, -1)
	if tone != (Tone{-255, 68, 255, 0}) {
		t.Errorf("NewTone clamped to %+v", tone)
	}
	gotT, err := DecodeTone(tone.Value())
	if err != nil || gotT != tone {
		t.Errorf("DecodeTone = %+v, %v", gotT, err)
	}

	// Out of range payloads written by other tools are clamped on read.
	raw := UserData(ClassColor, packFloats(-1, 256, 0, 0))
	if got, _ := DecodeColor(raw); got != (Color{0, 255, 0, 0}) {
		t.Errorf("DecodeColor(raw) = %+v", got)
	}
}

func TestColorToneErrors(t *testing.T) {
	if _, err := DecodeColor(NewTone(0, 0, 0, 0).Value()); !errors.Is(err, ErrType) {
		t.Errorf("DecodeColor(tone) err = %v, want ErrType", err)
	}
	if _, err := DecodeTone(UserData(ClassTone, make([]byte, 24))); !errors.Is(err, ErrCorruptTable) {
		t.Errorf("DecodeTone(short) err = %v, want ErrCorruptTable", err)
	}
}

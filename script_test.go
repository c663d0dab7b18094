// Script bundle tests.
//
// The bundle is the one file in a project where we control every byte
// that is not user content: the tag, the tuple shape and the zlib
// framing. These tests check the shape against the raw Marshal graph in
// addition to round-tripping through DecodeScripts.
package rvdata

import (
	"errors"
	"path/filepath"
	"testing"
)

func sampleScripts() *ScriptSet {
	return &ScriptSet{Scripts: []Script{
		{Name: "▼ Core", Body: ""},
		{Name: "Vocab", Body: "module Vocab\r\n  ShopBuy = \"Buy\"\r\nend\r\n"},
		{Name: "", Body: ""},
		{Name: "Main", Body: "rgss_main { SceneManager.run }\n"},
	}}
}

func TestScriptsRoundTrip(t *testing.T) {
	set := sampleScripts()
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		data, err := EncodeScripts(set, alg)
		if err != nil {
			t.Fatalf("alg %d: %v", alg, err)
		}
		got, err := DecodeScripts(data)
		if err != nil {
			t.Fatalf("alg %d: %v", alg, err)
		}
		if got.Len() != set.Len() {
			t.Fatalf("alg %d: %d scripts, want %d", alg, got.Len(), set.Len())
		}
		for i := range set.Scripts {
			if got.Scripts[i] != set.Scripts[i] {
				t.Errorf("alg %d script %d = %+v, want %+v", alg, i, got.Scripts[i], set.Scripts[i])
			}
		}
	}
}

// TestScriptsWireShape decodes the encoded bundle as plain values and
// checks each entry is [Integer tag, String name, String body] with the
// tag derived from the body and the name carrying a UTF-8 encoding.
func TestScriptsWireShape(t *testing.T) {
	set := sampleScripts()
	data, err := EncodeScripts(set, AlgXXHash3)
	if err != nil {
		t.Fatal(err)
	}
	root, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if root.Len() != len(set.Scripts) {
		t.Fatalf("root has %d entries", root.Len())
	}

	for i, entry := range root.Items() {
		s := set.Scripts[i]
		if entry.Len() != 3 {
			t.Fatalf("entry %d has %d elements", i, entry.Len())
		}
		tag, ok := entry.Index(0).Int()
		if !ok || tag != ScriptTag([]byte(s.Body), AlgXXHash3) {
			t.Errorf("entry %d tag = %d, want ScriptTag of body", i, tag)
		}
		if entry.Index(1).Encoding() != EncodingUTF8 {
			t.Errorf("entry %d name encoding = %q", i, entry.Index(1).Encoding())
		}
		if entry.Index(2).Encoding() != EncodingBinary {
			t.Errorf("entry %d body encoding = %q, want binary", i, entry.Index(2).Encoding())
		}
		body, err := decompress(entry.Index(2).Bytes())
		if err != nil || string(body) != s.Body {
			t.Errorf("entry %d body = %q, %v", i, body, err)
		}
	}
}

func TestScriptsEmptySet(t *testing.T) {
	data, err := EncodeScripts(&ScriptSet{}, AlgXXHash3)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeScripts(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Errorf("Len = %d, want 0", got.Len())
	}
}

func TestDecodeScriptsBadShape(t *testing.T) {
	goodBody, _ := compress([]byte("p 1"))

	tests := []struct {
		name string
		v    *Value
	}{
		{"root not array", Hash()},
		{"entry not array", Array(Str("x"))},
		{"two elements", Array(Array(Int(1), Str("x")))},
		{"four elements", Array(Array(Int(1), Str("x"), Bytes(goodBody), Nil()))},
		{"tag not int", Array(Array(Str("1"), Str("x"), Bytes(goodBody)))},
		{"name not string", Array(Array(Int(1), Symbol("x"), Bytes(goodBody)))},
		{"body not string", Array(Array(Int(1), Str("x"), Nil()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := DecodeScripts(data); !errors.Is(err, ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}
}

// TestDecodeScriptsBadZlib checks that a body that does not inflate is
// reported as both a format error and a decompression error, so callers
// can tell it apart from a malformed tuple.
func TestDecodeScriptsBadZlib(t *testing.T) {
	data, err := Encode(Array(Array(Int(0), Str("x"), Bytes([]byte("not zlib")))))
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecodeScripts(data)
	if !errors.Is(err, ErrFormat) || !errors.Is(err, ErrDecompress) {
		t.Errorf("err = %v, want ErrFormat and ErrDecompress", err)
	}
}

func TestEncodeScriptsUnknownAlgorithm(t *testing.T) {
	_, err := EncodeScripts(sampleScripts(), 99)
	if !errors.Is(err, ErrAlgorithm) {
		t.Errorf("err = %v, want ErrAlgorithm", err)
	}
}

func TestScriptsSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Scripts.rvdata2")
	set := sampleScripts()
	if err := set.Save(path, Config{SyncWrites: true}); err != nil {
		t.Fatal(err)
	}
	got, err := LoadScripts(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != set.Len() || got.Scripts[1] != set.Scripts[1] {
		t.Errorf("reloaded set differs: %+v", got.Scripts)
	}
}

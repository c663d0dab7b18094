// Decoded value model.
//
// A Value is a closed sum over the kinds that appear in project files.
// Values are handled by pointer: when a stream refers back to an object it
// has already produced, the decoder hands out the same *Value again, so
// shared and cyclic graphs survive a round trip. A nil *Value reads as Nil.
package rvdata

import (
	"fmt"
	"math/big"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindArray
	KindHash
	KindObject   // Class + instance variables (names keep their '@')
	KindStruct   // Class + members
	KindUserData // Class + opaque bytes produced by a custom dumper
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindObject:
		return "object"
	case KindStruct:
		return "struct"
	case KindUserData:
		return "userdata"
	default:
		return "unknown"
	}
}

// String encodings. Binary strings carry no annotation on the wire.
const (
	EncodingBinary = ""
	EncodingUTF8   = "UTF-8"
	EncodingASCII  = "US-ASCII"
)

// Field is a named slot of an Object or Struct.
type Field struct {
	Name  string
	Value *Value
}

// Pair is one Hash entry.
type Pair struct {
	Key   *Value
	Value *Value
}

// Value is a single decoded unit.
type Value struct {
	kind Kind

	boolVal  bool
	intVal   int64
	bigVal   *big.Int // set only when the integer does not fit int64
	floatVal float64
	data     []byte // String and UserData payload
	name     string // Symbol name or Class name
	enc      string // String encoding

	items  []*Value
	pairs  []Pair
	def    *Value // Hash default
	fields []Field
}

// Constructors

// Nil creates a nil value.
func Nil() *Value {
	return &Value{kind: KindNil}
}

// Bool creates a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolVal: b}
}

// Int creates an integer value.
func Int(i int64) *Value {
	return &Value{kind: KindInt, intVal: i}
}

// BigInt creates an integer value of any size. Values that fit in int64
// are stored as such.
func BigInt(b *big.Int) *Value {
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return &Value{kind: KindInt, bigVal: new(big.Int).Set(b)}
}

// Float creates a floating point value.
func Float(f float64) *Value {
	return &Value{kind: KindFloat, floatVal: f}
}

// Str creates a UTF-8 string.
func Str(s string) *Value {
	return &Value{kind: KindString, data: []byte(s), enc: EncodingUTF8}
}

// Bytes creates a binary string with no encoding annotation.
func Bytes(b []byte) *Value {
	return &Value{kind: KindString, data: b, enc: EncodingBinary}
}

// Text creates a string with an explicit encoding name.
func Text(b []byte, enc string) *Value {
	return &Value{kind: KindString, data: b, enc: enc}
}

// Symbol creates an interned symbol.
func Symbol(name string) *Value {
	return &Value{kind: KindSymbol, name: name}
}

// Array creates an array.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Hash creates a hash with no default.
func Hash(pairs ...Pair) *Value {
	return &Value{kind: KindHash, pairs: pairs}
}

// Object creates a user-defined object. Field names are instance variable
// names and normally start with '@'.
func Object(class string, fields ...Field) *Value {
	return &Value{kind: KindObject, name: class, fields: fields}
}

// Struct creates a Struct instance.
func Struct(class string, fields ...Field) *Value {
	return &Value{kind: KindStruct, name: class, fields: fields}
}

// UserData creates an object serialised by its class's own dumper.
func UserData(class string, data []byte) *Value {
	return &Value{kind: KindUserData, name: class, data: data}
}

// Accessors

// Kind returns the variant. A nil receiver is KindNil.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

// IsNil reports whether v is nil or a Nil value.
func (v *Value) IsNil() bool {
	return v.Kind() == KindNil
}

// Bool returns the boolean payload.
func (v *Value) Bool() bool {
	return v != nil && v.kind == KindBool && v.boolVal
}

// Int returns the integer payload. ok is false when v is not an integer
// or does not fit in int64.
func (v *Value) Int() (i int64, ok bool) {
	if v.Kind() != KindInt || v.bigVal != nil {
		return 0, false
	}
	return v.intVal, true
}

// Big returns the integer payload at full precision, or nil if v is not
// an integer.
func (v *Value) Big() *big.Int {
	if v.Kind() != KindInt {
		return nil
	}
	if v.bigVal != nil {
		return new(big.Int).Set(v.bigVal)
	}
	return big.NewInt(v.intVal)
}

// Float returns the float payload.
func (v *Value) Float() float64 {
	if v.Kind() != KindFloat {
		return 0
	}
	return v.floatVal
}

// Bytes returns the raw payload of a String or UserData.
func (v *Value) Bytes() []byte {
	switch v.Kind() {
	case KindString, KindUserData:
		return v.data
	}
	return nil
}

// Text returns a String's payload or a Symbol's name as a Go string.
func (v *Value) Text() string {
	switch v.Kind() {
	case KindString:
		return string(v.data)
	case KindSymbol:
		return v.name
	}
	return ""
}

// Encoding returns the encoding name of a String.
func (v *Value) Encoding() string {
	if v.Kind() != KindString {
		return ""
	}
	return v.enc
}

// Class returns the class name of an Object, Struct or UserData.
func (v *Value) Class() string {
	switch v.Kind() {
	case KindObject, KindStruct, KindUserData:
		return v.name
	}
	return ""
}

// Len returns the element count of an Array, Hash, Object or Struct.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.items)
	case KindHash:
		return len(v.pairs)
	case KindObject, KindStruct:
		return len(v.fields)
	}
	return 0
}

// Items returns the elements of an Array. The slice is shared.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Index returns the i'th Array element, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindArray || i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

// Append adds elements to an Array.
func (v *Value) Append(items ...*Value) {
	if v.Kind() == KindArray {
		v.items = append(v.items, items...)
	}
}

// Pairs returns the entries of a Hash. The slice is shared.
func (v *Value) Pairs() []Pair {
	if v.Kind() != KindHash {
		return nil
	}
	return v.pairs
}

// Default returns a Hash's default value, or nil.
func (v *Value) Default() *Value {
	if v.Kind() != KindHash {
		return nil
	}
	return v.def
}

// SetDefault sets a Hash's default value.
func (v *Value) SetDefault(def *Value) {
	if v.Kind() == KindHash {
		v.def = def
	}
}

// Fields returns the fields of an Object or Struct. The slice is shared.
func (v *Value) Fields() []Field {
	switch v.Kind() {
	case KindObject, KindStruct:
		return v.fields
	}
	return nil
}

// Field looks up an Object or Struct field. For objects the '@' prefix
// may be omitted: Field("id") finds "@id".
func (v *Value) Field(name string) *Value {
	i := v.fieldIndex(name)
	if i < 0 {
		return nil
	}
	return v.fields[i].Value
}

// SetField replaces a field, appending it if absent. On objects a bare
// name gains an '@' prefix.
func (v *Value) SetField(name string, val *Value) {
	switch v.Kind() {
	case KindObject, KindStruct:
	default:
		return
	}
	if i := v.fieldIndex(name); i >= 0 {
		v.fields[i].Value = val
		return
	}
	if v.kind == KindObject && !strings.HasPrefix(name, "@") {
		name = "@" + name
	}
	v.fields = append(v.fields, Field{Name: name, Value: val})
}

func (v *Value) fieldIndex(name string) int {
	fields := v.Fields()
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	if v.Kind() == KindObject && !strings.HasPrefix(name, "@") {
		for i, f := range fields {
			if f.Name == "@"+name {
				return i
			}
		}
	}
	return -1
}

// GoString renders a short debugging form.
func (v *Value) GoString() string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprint(v.boolVal)
	case KindInt:
		return v.Big().String()
	case KindFloat:
		return fmt.Sprint(v.floatVal)
	case KindString:
		return fmt.Sprintf("%q", v.data)
	case KindSymbol:
		return ":" + v.name
	case KindArray:
		return fmt.Sprintf("[%d items]", len(v.items))
	case KindHash:
		return fmt.Sprintf("{%d pairs}", len(v.pairs))
	default:
		return fmt.Sprintf("#<%s>", v.name)
	}
}

// Equal reports whether a and b are structurally equal. Shared and cyclic
// graphs compare by shape; a pair already under comparison is assumed equal.
func Equal(a, b *Value) bool {
	return equal(a, b, make(map[[2]*Value]bool))
}

func equal(a, b *Value, seen map[[2]*Value]bool) bool {
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a == nil || b == nil {
		return a.Kind() == KindNil // both nil-kind, one may be a nil pointer
	}
	key := [2]*Value{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true

	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.Big().Cmp(b.Big()) == 0
	case KindFloat:
		// NaN equals NaN here: the value came off the same bytes.
		return a.floatVal == b.floatVal || (a.floatVal != a.floatVal && b.floatVal != b.floatVal)
	case KindString:
		return a.enc == b.enc && string(a.data) == string(b.data)
	case KindSymbol:
		return a.name == b.name
	case KindUserData:
		return a.name == b.name && string(a.data) == string(b.data)
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !equal(a.items[i], b.items[i], seen) {
				return false
			}
		}
		return true
	case KindHash:
		if len(a.pairs) != len(b.pairs) || !equal(a.def, b.def, seen) {
			return false
		}
		for i := range a.pairs {
			if !equal(a.pairs[i].Key, b.pairs[i].Key, seen) || !equal(a.pairs[i].Value, b.pairs[i].Value, seen) {
				return false
			}
		}
		return true
	case KindObject, KindStruct:
		if a.name != b.name || len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !equal(a.fields[i].Value, b.fields[i].Value, seen) {
				return false
			}
		}
		return true
	}
	return false
}

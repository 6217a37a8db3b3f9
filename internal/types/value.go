package types

import (
	"fmt"
	"strings"
)

// Value is the simulator's runtime universe (spec.md §3). It is a closed
// sum type implemented as an interface with unexported marker methods,
// mirroring the Type variants above.
type Value interface {
	fmt.Stringer
	isValue()
	// Equal reports structural equality. X never equals anything, including
	// another X, matching spec.md §4.8's "X is infectious" rule extended to
	// equality: two unknowns are not known to be equal.
	Equal(other Value) bool
}

// XValue is the unknown value, infectious through most operators
// (spec.md §4.8).
type XValue struct{}

func (XValue) isValue()         {}
func (XValue) String() string   { return "X" }
func (XValue) Equal(Value) bool { return false }

// X is the canonical unknown value.
var X Value = XValue{}

// IsX reports whether v is the unknown value.
func IsX(v Value) bool {
	_, ok := v.(XValue)
	return ok
}

// WordValue is a masked, fixed-width unsigned integer value.
type WordValue struct {
	Val   uint64
	Width uint64
}

// NewWord masks n to width bits.
func NewWord(n uint64, width uint64) WordValue {
	return WordValue{Val: maskTo(n, width), Width: width}
}

func maskTo(n, width uint64) uint64 {
	if width >= 64 {
		return n
	}
	return n & ((uint64(1) << width) - 1)
}

func (WordValue) isValue() {}
func (w WordValue) String() string {
	return fmt.Sprintf("%d", w.Val)
}
func (w WordValue) Equal(other Value) bool {
	o, ok := other.(WordValue)
	return ok && o.Val == w.Val && o.Width == w.Width
}

// Bit returns bit i (0 = LSB) of the word, as 0 or 1.
func (w WordValue) Bit(i uint64) uint64 {
	return (w.Val >> i) & 1
}

// VecValue is a fixed-length ordered sequence of element values.
type VecValue struct{ Elems []Value }

func (VecValue) isValue() {}
func (v VecValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (v VecValue) Equal(other Value) bool {
	o, ok := other.(VecValue)
	if !ok || len(o.Elems) != len(v.Elems) {
		return false
	}
	for i := range v.Elems {
		if !v.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// ValidValue is a tagged optional: either Invalid (Present=false) or a
// present payload value.
type ValidValue struct {
	Present bool
	Payload Value // nil when !Present
}

func (ValidValue) isValue() {}
func (v ValidValue) String() string {
	if !v.Present {
		return "@Invalid()"
	}
	return fmt.Sprintf("@Valid(%s)", v.Payload)
}
func (v ValidValue) Equal(other Value) bool {
	o, ok := other.(ValidValue)
	if !ok || o.Present != v.Present {
		return false
	}
	if !v.Present {
		return true
	}
	return v.Payload.Equal(o.Payload)
}

// EnumValue names one variant of an enum type by index, retaining the
// variant's declared literal bits.
type EnumValue struct {
	Def   *EnumTypeDef
	Index int
	Bits  uint64
}

func (EnumValue) isValue() {}
func (e EnumValue) String() string {
	if e.Def == nil || e.Index < 0 || e.Index >= len(e.Def.Variants) {
		return "<enum?>"
	}
	return e.Def.Variants[e.Index].Name
}
func (e EnumValue) Equal(other Value) bool {
	o, ok := other.(EnumValue)
	return ok && o.Def == e.Def && o.Index == e.Index
}

// StructValue holds one value per declared field.
type StructValue struct {
	Def    *StructTypeDef
	Fields map[string]Value
}

func (StructValue) isValue() {}
func (s StructValue) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range s.Def.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, s.Fields[f.Name])
	}
	b.WriteString("}")
	return b.String()
}
func (s StructValue) Equal(other Value) bool {
	o, ok := other.(StructValue)
	if !ok || o.Def != s.Def {
		return false
	}
	for _, f := range s.Def.Fields {
		a, b := s.Fields[f.Name], o.Fields[f.Name]
		if a == nil || b == nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

// AltValue is a constructed value of a tagged union, naming the
// alternative and carrying its ordered payload values.
type AltValue struct {
	Def  *AltTypeDef
	Ctor string
	Args []Value
}

func (AltValue) isValue() {}
func (a AltValue) String() string {
	parts := make([]string, len(a.Args))
	for i, v := range a.Args {
		parts[i] = v.String()
	}
	return fmt.Sprintf("@%s(%s)", a.Ctor, strings.Join(parts, ", "))
}
func (a AltValue) Equal(other Value) bool {
	o, ok := other.(AltValue)
	if !ok || o.Def != a.Def || o.Ctor != a.Ctor || len(o.Args) != len(a.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

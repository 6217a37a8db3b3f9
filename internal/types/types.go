// Package types implements bitsysim's algebraic type model: immutable,
// shared type values with a well-defined bitwidth, mirroring spec.md §3
// and grounded on funxy's internal/typesystem interface-per-variant shape
// (Kind there, Type here).
package types

import (
	"fmt"
	"strings"

	"github.com/bitsysim/bitsysim/internal/diagpath"
)

// Type is the shared, immutable algebraic type value. Every variant knows
// its own bitwidth; TypeRef defers to its resolved referent.
type Type interface {
	fmt.Stringer
	isType()
	// Width returns the type's bitwidth. TypeRef must be resolved before
	// this is called; calling it on an unresolved TypeRef is an error.
	Width() (uint64, error)
	// Equal reports structural equality. Two TypeRefs compare by their
	// resolved referents, not by name.
	Equal(other Type) bool
}

// Word is a fixed-width unsigned integer type; width 1 word types also
// stand in for single-bit booleans. Signed interpretation is a
// reinterpretation of the same bits, not a distinct type (spec.md §3).
type Word struct{ W uint64 }

func (Word) isType()                  {}
func (w Word) Width() (uint64, error) { return w.W, nil }
func (w Word) String() string         { return fmt.Sprintf("Word<%d>", w.W) }
func (w Word) Equal(other Type) bool {
	o, ok := Underlying(other).(Word)
	return ok && o.W == w.W
}

// Vec is a fixed-length homogeneous vector.
type Vec struct {
	Elem   Type
	Length uint64
}

func (Vec) isType() {}
func (v Vec) Width() (uint64, error) {
	ew, err := v.Elem.Width()
	if err != nil {
		return 0, err
	}
	return ew * v.Length, nil
}
func (v Vec) String() string { return fmt.Sprintf("Vec<%s, %d>", v.Elem, v.Length) }
func (v Vec) Equal(other Type) bool {
	o, ok := Underlying(other).(Vec)
	return ok && o.Length == v.Length && v.Elem.Equal(o.Elem)
}

// Valid is a tagged optional: one presence bit plus the inner payload.
type Valid struct{ Inner Type }

func (Valid) isType() {}
func (v Valid) Width() (uint64, error) {
	iw, err := v.Inner.Width()
	if err != nil {
		return 0, err
	}
	return iw + 1, nil
}
func (v Valid) String() string { return fmt.Sprintf("Valid<%s>", v.Inner) }
func (v Valid) Equal(other Type) bool {
	o, ok := Underlying(other).(Valid)
	return ok && v.Inner.Equal(o.Inner)
}

// EnumVariant is one named, fixed-width literal of an Enum type.
type EnumVariant struct {
	Name  string
	Value uint64
}

// EnumTypeDef is a named set of fixed-width literal variants, all sharing
// the enum's declared width.
type EnumTypeDef struct {
	Name     string
	Width    uint64
	Variants []EnumVariant
}

// VariantByName looks up a variant by name.
func (d *EnumTypeDef) VariantByName(name string) (EnumVariant, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariant{}, false
}

// Enum is a named enumerated type.
type Enum struct{ Def *EnumTypeDef }

func (Enum) isType()                  {}
func (e Enum) Width() (uint64, error) { return e.Def.Width, nil }
func (e Enum) String() string         { return e.Def.Name }
func (e Enum) Equal(other Type) bool {
	o, ok := Underlying(other).(Enum)
	return ok && o.Def == e.Def
}

// StructField is one ordered field of a Struct type.
type StructField struct {
	Name string
	Type Type
}

// StructTypeDef is a named, ordered record type.
type StructTypeDef struct {
	Name   string
	Fields []StructField
}

// FieldByName looks up a field by name.
func (d *StructTypeDef) FieldByName(name string) (StructField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// Struct is a named record type.
type Struct struct{ Def *StructTypeDef }

func (Struct) isType() {}
func (s Struct) Width() (uint64, error) {
	var total uint64
	for _, f := range s.Def.Fields {
		w, err := f.Type.Width()
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}
func (s Struct) String() string { return s.Def.Name }
func (s Struct) Equal(other Type) bool {
	o, ok := Underlying(other).(Struct)
	return ok && o.Def == s.Def
}

// AltCtor is one named alternative of an Alt type, with an ordered list of
// payload types.
type AltCtor struct {
	Name    string
	Payload []Type
}

// AltTypeDef is a named tagged union.
type AltTypeDef struct {
	Name string
	Alts []AltCtor
}

// CtorByName looks up an alternative constructor by name.
func (d *AltTypeDef) CtorByName(name string) (AltCtor, bool) {
	for _, a := range d.Alts {
		if a.Name == name {
			return a, true
		}
	}
	return AltCtor{}, false
}

// Alt is a named tagged union type.
type Alt struct{ Def *AltTypeDef }

func (Alt) isType() {}

// Width of an Alt is the tag width (enough bits to distinguish every
// alternative) plus the widest payload, matching the conventional tagged
// union layout: a discriminant followed by a union of payload bits.
func (a Alt) Width() (uint64, error) {
	tagBits := bitsFor(uint64(len(a.Def.Alts)))
	var maxPayload uint64
	for _, alt := range a.Def.Alts {
		var sum uint64
		for _, t := range alt.Payload {
			w, err := t.Width()
			if err != nil {
				return 0, err
			}
			sum += w
		}
		if sum > maxPayload {
			maxPayload = sum
		}
	}
	return tagBits + maxPayload, nil
}
func (a Alt) String() string { return a.Def.Name }
func (a Alt) Equal(other Type) bool {
	o, ok := Underlying(other).(Alt)
	return ok && o.Def == a.Def
}

func bitsFor(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	bits := uint64(0)
	v := n - 1
	for v > 0 {
		bits++
		v >>= 1
	}
	return bits
}

// TypeRef is a forward reference to a named type, bound exactly once via
// ResolveTo. The resolver does not create TypeRefs: it resolves items in
// dependency order. Its bitwidth and equality defer entirely to its referent.
type TypeRef struct {
	ref *diagpath.Reference[Type]
}

// NewTypeRef creates an unresolved reference to a named type.
func NewTypeRef(name string) *TypeRef {
	return &TypeRef{ref: diagpath.NewReference[Type](name)}
}

func (*TypeRef) isType() {}

// Name returns the referenced type's name, whether or not it is resolved.
func (t *TypeRef) Name() string { return t.ref.Name() }

// ResolveTo binds the reference to its target type; errors if already bound.
func (t *TypeRef) ResolveTo(target Type) error { return t.ref.ResolveTo(target) }

// IsResolved reports whether ResolveTo has run.
func (t *TypeRef) IsResolved() bool { return t.ref.IsResolved() }

func (t *TypeRef) Width() (uint64, error) {
	target, err := t.ref.Target()
	if err != nil {
		return 0, fmt.Errorf("types: %w (querying width of TypeRef %q)", err, t.ref.Name())
	}
	return target.Width()
}

func (t *TypeRef) String() string {
	if target, err := t.ref.Target(); err == nil {
		return target.String()
	}
	return t.ref.Name()
}

func (t *TypeRef) Equal(other Type) bool {
	target, err := t.ref.Target()
	if err != nil {
		return false
	}
	return target.Equal(other)
}

// Underlying strips away any TypeRef indirection, returning the concrete
// type. Safe on an unresolved TypeRef: returns the TypeRef itself, so
// callers doing structural comparisons should prefer Equal over a type
// switch on the result.
func Underlying(t Type) Type {
	for {
		ref, ok := t.(*TypeRef)
		if !ok {
			return t
		}
		target, err := ref.ref.Target()
		if err != nil {
			return t
		}
		t = target
	}
}

// Format renders a type for diagnostics, dereferencing TypeRefs.
func Format(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// JoinNames renders a comma-separated list of type names, for error
// messages that list candidate field/ctor names.
func JoinNames(names []string) string { return strings.Join(names, ", ") }

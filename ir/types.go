package ir

// Type is a scalar VIR type. Types are canonical: the registry hands
// out one *Type per name, so pointer equality is type equality.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner is the closed union of type payloads.
type TypeInner interface {
	typeInner()
}

// IntType is an integer type of the given bit width. VIR integers
// carry no signedness; signedness lives in the opcode.
type IntType struct {
	Bits uint8
}

func (IntType) typeInner() {}

// FloatType is an IEEE floating point type of the given bit width.
type FloatType struct {
	Bits uint8
}

func (FloatType) typeInner() {}

// PredicateType is the 1-bit guard type.
type PredicateType struct{}

func (PredicateType) typeInner() {}

// Bytes returns the storage size in bytes. Predicates occupy one byte.
func (t *Type) Bytes() int {
	switch inner := t.Inner.(type) {
	case IntType:
		return int(inner.Bits) / 8
	case FloatType:
		return int(inner.Bits) / 8
	case PredicateType:
		return 1
	}
	return 0
}

func (t *Type) String() string { return t.Name }

// TypeRegistry resolves canonical type names to their unique Type. It
// is seeded with the built-in scalar types and read-only afterwards,
// so a single registry may be shared by any number of concurrent
// readers. The registry is owned by the surrounding compilation
// context; translation queries it read-only.
type TypeRegistry struct {
	types   []*Type
	typeMap map[string]*Type
}

// NewTypeRegistry returns a registry holding the built-in scalar
// types: i8, i16, i32, i64, f32, f64, and the 1-bit predicate i1.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		types:   make([]*Type, 0, 8),
		typeMap: make(map[string]*Type, 8),
	}

	r.add("i1", PredicateType{})
	r.add("i8", IntType{Bits: 8})
	r.add("i16", IntType{Bits: 16})
	r.add("i32", IntType{Bits: 32})
	r.add("i64", IntType{Bits: 64})
	r.add("f32", FloatType{Bits: 32})
	r.add("f64", FloatType{Bits: 64})

	return r
}

func (r *TypeRegistry) add(name string, inner TypeInner) {
	t := &Type{Name: name, Inner: inner}
	r.types = append(r.types, t)
	r.typeMap[name] = t
}

// Lookup resolves a canonical type name.
func (r *TypeRegistry) Lookup(name string) (*Type, bool) {
	t, ok := r.typeMap[name]
	return t, ok
}

// Types returns all registered types in registration order.
func (r *TypeRegistry) Types() []*Type {
	return r.types
}

// Count returns the number of registered types.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}

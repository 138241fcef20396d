package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for well-known types.
type Builtins struct {
	Invalid   TypeID
	Void      TypeID
	Object    TypeID
	Bool      TypeID
	String    TypeID
	Null      TypeID
	ValueType TypeID // implicit base of structs and enums
	Array     TypeID // implicit base of arrays
	Delegate  TypeID // implicit base of delegates
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// Generic instantiations are created lazily while the engine walks base
// types and interfaces, so every method is safe for concurrent use.
type Interner struct {
	mu        sync.RWMutex
	types     []Type
	index     map[typeKey]TypeID
	instances map[string]TypeID
	builtins  Builtins
	numerics  []NumericInfo
	nominals  []NominalInfo
	params    []TypeParamInfo
	tuples    []TupleInfo
	lambdas   []Signature
	groups    []MethodGroupInfo
	errors    []string
}

// NewInterner constructs an interner seeded with the well-known types.
func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[typeKey]TypeID, 64),
		instances: make(map[string]TypeID),
	}
	// reserve slot 0 as invalid sentinel in every side table
	in.numerics = append(in.numerics, NumericInfo{})
	in.nominals = append(in.nominals, NominalInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.lambdas = append(in.lambdas, Signature{})
	in.groups = append(in.groups, MethodGroupInfo{})
	in.errors = append(in.errors, "")

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Object = in.Intern(Type{Kind: KindObject})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.ValueType = in.DeclareClass("ValueType", NoTypeID)
	in.builtins.Array = in.DeclareClass("Array", NoTypeID)
	in.builtins.Delegate = in.DeclareClass("Delegate", NoTypeID)
	return in
}

// Builtins returns TypeIDs for well-known types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Len reports how many types have been interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types)
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	in.mu.RLock()
	id, ok := in.index[key]
	in.mu.RUnlock()
	if ok {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internLocked(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internLocked(t)
}

func (in *Interner) internLocked(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Array interns an array type.
func (in *Interner) Array(elem TypeID, rank uint32) TypeID {
	return in.Intern(MakeArray(elem, rank))
}

// Pointer interns a pointer type.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// Ref interns a by-reference type.
func (in *Interner) Ref(elem TypeID) TypeID {
	return in.Intern(MakeRef(elem))
}

// Nullable interns the nullable wrapper over elem.
func (in *Interner) Nullable(elem TypeID) TypeID {
	return in.Intern(MakeNullable(elem))
}

// Erroneous registers a type reference that could not be resolved.
func (in *Interner) Erroneous(name string) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.errors = append(in.errors, name)
	return in.internLocked(Type{Kind: KindError, Payload: slotOf(len(in.errors)-1, "error")})
}

func (in *Interner) typeLocked(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

func slotOf(n int, what string) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s info overflow: %w", what, err))
	}
	return slot
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Payload uint32
}

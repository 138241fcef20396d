package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// NominalInfo stores metadata for a class, struct, interface, enum or
// delegate type. Instances of generic definitions only record Def and Args;
// everything else is read from the definition and substituted on demand.
type NominalInfo struct {
	Name       string
	Kind       Kind
	Def        TypeID   // generic definition; equals the type itself for definitions
	Params     []TypeID // type parameters, definitions only
	Args       []TypeID // type arguments, instances only
	Base       TypeID
	Interfaces []TypeID
	Operators  []Operator
	Sealed     bool
	Underlying TypeID    // enums
	Invoke     Signature // delegates
}

// DeclareClass registers a class. A NoTypeID base means the class derives
// directly from object.
func (in *Interner) DeclareClass(name string, base TypeID) TypeID {
	return in.declare(NominalInfo{Name: name, Kind: KindClass, Base: base})
}

// DeclareStruct registers a value type.
func (in *Interner) DeclareStruct(name string) TypeID {
	return in.declare(NominalInfo{Name: name, Kind: KindStruct, Sealed: true})
}

// DeclareInterface registers an interface type.
func (in *Interner) DeclareInterface(name string, bases ...TypeID) TypeID {
	return in.declare(NominalInfo{Name: name, Kind: KindInterface, Interfaces: slices.Clone(bases)})
}

// DeclareEnum registers an enum over the numeric underlying type.
func (in *Interner) DeclareEnum(name string, underlying TypeID) TypeID {
	return in.declare(NominalInfo{Name: name, Kind: KindEnum, Underlying: underlying, Sealed: true})
}

// DeclareDelegate registers a delegate type with the given invoke signature.
func (in *Interner) DeclareDelegate(name string, params []TypeID, result TypeID) TypeID {
	return in.declare(NominalInfo{
		Name:   name,
		Kind:   KindDelegate,
		Sealed: true,
		Invoke: Signature{Params: slices.Clone(params), Result: result},
	})
}

func (in *Interner) declare(info NominalInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.nominals = append(in.nominals, info)
	slot := slotOf(len(in.nominals)-1, "nominal")
	id := in.internLocked(Type{Kind: info.Kind, Payload: slot})
	in.nominals[slot].Def = id
	return id
}

// SetBase replaces the declared base class.
func (in *Interner) SetBase(id, base TypeID) {
	in.updateDef(id, func(info *NominalInfo) { info.Base = base })
}

// AddInterface appends a directly implemented interface.
func (in *Interner) AddInterface(id, iface TypeID) {
	in.updateDef(id, func(info *NominalInfo) { info.Interfaces = append(info.Interfaces, iface) })
}

// Seal marks a class as sealed.
func (in *Interner) Seal(id TypeID) {
	in.updateDef(id, func(info *NominalInfo) { info.Sealed = true })
}

// SetInvoke replaces the invoke signature of a delegate definition.
func (in *Interner) SetInvoke(id TypeID, params []TypeID, result TypeID) {
	in.updateDef(id, func(info *NominalInfo) {
		info.Invoke = Signature{Params: slices.Clone(params), Result: result}
	})
}

// AddOperator declares a conversion operator on the type. Declaring is
// filled in from id; Order defaults to declaration order.
func (in *Interner) AddOperator(id TypeID, op Operator) {
	in.updateDef(id, func(info *NominalInfo) {
		op.Declaring = id
		if op.Order == 0 {
			op.Order = int32(len(info.Operators) + 1)
		}
		info.Operators = append(info.Operators, op)
	})
}

func (in *Interner) updateDef(id TypeID, fn func(*NominalInfo)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.nominalLocked(id)
	if info == nil || info.Def != id {
		panic(fmt.Sprintf("types: %d is not a nominal definition", id))
	}
	fn(info)
}

// Instantiate returns the generic instantiation def<args...>. Instantiating a
// definition with its own type parameters yields the definition itself.
func (in *Interner) Instantiate(def TypeID, args ...TypeID) TypeID {
	in.mu.RLock()
	info := in.nominalLocked(def)
	if info == nil || info.Def != def {
		in.mu.RUnlock()
		panic(fmt.Sprintf("types: %d is not a generic definition", def))
	}
	if len(info.Params) != len(args) {
		in.mu.RUnlock()
		panic(fmt.Sprintf("types: %s expects %d type arguments, got %d", info.Name, len(info.Params), len(args)))
	}
	if slices.Equal(info.Params, args) {
		in.mu.RUnlock()
		return def
	}
	kind := info.Kind
	name := info.Name
	key := instanceKey("inst", def, args)
	id, ok := in.instances[key]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.instances[key]; ok {
		return id
	}
	in.nominals = append(in.nominals, NominalInfo{Name: name, Kind: kind, Def: def, Args: slices.Clone(args)})
	slot := slotOf(len(in.nominals)-1, "nominal")
	id = in.internLocked(Type{Kind: kind, Payload: slot})
	in.instances[key] = id
	return id
}

// Nominal returns a copy of the metadata stored for id.
func (in *Interner) Nominal(id TypeID) (NominalInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.nominalLocked(id)
	if info == nil {
		return NominalInfo{}, false
	}
	return *info, true
}

func (in *Interner) nominalLocked(id TypeID) *NominalInfo {
	tt, ok := in.typeLocked(id)
	if !ok || !tt.Kind.IsNominal() {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

// definitionInfo returns the definition record for id together with the
// substitution that maps it onto id.
func (in *Interner) definitionInfo(id TypeID) (NominalInfo, substitution, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.nominalLocked(id)
	if info == nil {
		return NominalInfo{}, substitution{}, false
	}
	if info.Def == id {
		return *info, substitution{}, true
	}
	def := in.nominalLocked(info.Def)
	if def == nil {
		return NominalInfo{}, substitution{}, false
	}
	return *def, substitution{params: def.Params, args: info.Args}, true
}

func instanceKey(prefix string, head TypeID, args []TypeID) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(head), 10))
	sb.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	sb.WriteByte('>')
	return sb.String()
}

package types

import (
	"fmt"
	"slices"
)

// TypeParamInfo stores metadata about a generic type parameter.
type TypeParamInfo struct {
	Name        string
	Owner       TypeID // declaring generic type; NoTypeID for method type parameters
	Index       uint32
	Variance    Variance
	Constraints []TypeID
	// ReferenceType and ValueType mirror "class" / "struct" constraints.
	ReferenceType bool
	ValueType     bool
}

// AddTypeParam appends a type parameter to a generic definition. It must be
// called before the definition is instantiated.
func (in *Interner) AddTypeParam(owner TypeID, name string, variance Variance) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.nominalLocked(owner)
	if info == nil || info.Def != owner {
		panic(fmt.Sprintf("types: %d is not a nominal definition", owner))
	}
	id := in.newTypeParamLocked(TypeParamInfo{
		Name:     name,
		Owner:    owner,
		Index:    slotOf(len(info.Params), "type param index"),
		Variance: variance,
	})
	info = in.nominalLocked(owner)
	info.Params = append(info.Params, id)
	return id
}

// NewMethodTypeParam registers a type parameter that belongs to a method.
func (in *Interner) NewMethodTypeParam(name string, index uint32) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.newTypeParamLocked(TypeParamInfo{Name: name, Index: index})
}

func (in *Interner) newTypeParamLocked(info TypeParamInfo) TypeID {
	in.params = append(in.params, info)
	slot := slotOf(len(in.params)-1, "type param")
	return in.internLocked(Type{Kind: KindTypeParam, Payload: slot})
}

// AddConstraint records a type constraint (base class, interface or another
// type parameter) on param.
func (in *Interner) AddConstraint(param, constraint TypeID) {
	in.updateParam(param, func(info *TypeParamInfo) {
		info.Constraints = append(info.Constraints, constraint)
	})
}

// SetReferenceConstraint marks param as constrained to reference types.
func (in *Interner) SetReferenceConstraint(param TypeID) {
	in.updateParam(param, func(info *TypeParamInfo) { info.ReferenceType = true })
}

// SetValueConstraint marks param as constrained to non-nullable value types.
func (in *Interner) SetValueConstraint(param TypeID) {
	in.updateParam(param, func(info *TypeParamInfo) { info.ValueType = true })
}

func (in *Interner) updateParam(id TypeID, fn func(*TypeParamInfo)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.paramLocked(id)
	if info == nil {
		panic(fmt.Sprintf("types: %d is not a type parameter", id))
	}
	fn(info)
}

// TypeParam returns metadata for the provided type parameter.
func (in *Interner) TypeParam(id TypeID) (TypeParamInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.paramLocked(id)
	if info == nil {
		return TypeParamInfo{}, false
	}
	out := *info
	out.Constraints = slices.Clone(info.Constraints)
	return out, true
}

func (in *Interner) paramLocked(id TypeID) *TypeParamInfo {
	tt, ok := in.typeLocked(id)
	if !ok || tt.Kind != KindTypeParam {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil
	}
	return &in.params[tt.Payload]
}

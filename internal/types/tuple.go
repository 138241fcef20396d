package types

import (
	"slices"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple creates or finds an existing tuple type with the given elements.
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	key := instanceKey("tuple", NoTypeID, elems)
	in.mu.RLock()
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
	in.tuples = append(in.tuples, TupleInfo{Elems: slices.Clone(elems)})
	id = in.internLocked(Type{Kind: KindTuple, Payload: slotOf(len(in.tuples)-1, "tuple")})
	in.instances[key] = id
	return id
}

// TupleElems returns the element types for a tuple TypeID.
func (in *Interner) TupleElems(id TypeID) []TypeID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.typeLocked(id)
	if !ok || tt.Kind != KindTuple {
		return nil
	}
	if int(tt.Payload) >= len(in.tuples) {
		return nil
	}
	return slices.Clone(in.tuples[tt.Payload].Elems)
}

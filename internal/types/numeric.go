package types

// NumericInfo names a built-in numeric type. The conversion table between
// numeric types is owned by the language rules, not by the interner.
type NumericInfo struct {
	Name string
}

// Numeric interns the built-in numeric type with the given name.
func (in *Interner) Numeric(name string) TypeID {
	key := "num:" + name
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
	in.numerics = append(in.numerics, NumericInfo{Name: name})
	id = in.internLocked(Type{Kind: KindNumeric, Payload: slotOf(len(in.numerics)-1, "numeric")})
	in.instances[key] = id
	return id
}

// NumericName returns the numeric type name for id.
func (in *Interner) NumericName(id TypeID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.typeLocked(id)
	if !ok || tt.Kind != KindNumeric {
		return "", false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.numerics) {
		return "", false
	}
	return in.numerics[tt.Payload].Name, true
}

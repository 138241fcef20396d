package types

// Operator is a user-declared conversion operator. It is a comparable value
// so conversions that reference it stay structurally comparable.
type Operator struct {
	Declaring TypeID
	From      TypeID
	To        TypeID
	Implicit  bool
	Order     int32 // declaration order inside Declaring
	Name      string
}

// IsLiftable reports whether the operator can be lifted over nullable
// operands: both sides must be non-nullable value types.
func (op Operator) IsLiftable(m Model) bool {
	return m.IsValueType(op.From) && m.IsValueType(op.To) &&
		m.Kind(op.From) != KindNullable && m.Kind(op.To) != KindNullable
}

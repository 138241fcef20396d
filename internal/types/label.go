package types

import (
	"strconv"
	"strings"
)

// Name returns a user-friendly label for a TypeID.
func (in *Interner) Name(id TypeID) string {
	return in.labelDepth(id, 0)
}

func (in *Interner) labelDepth(id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindError:
		in.mu.RLock()
		defer in.mu.RUnlock()
		if int(tt.Payload) < len(in.errors) {
			return "<error " + in.errors[tt.Payload] + ">"
		}
		return "<error>"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNull:
		return "<null>"
	case KindNumeric:
		name, _ := in.NumericName(id)
		return name
	case KindArray:
		return in.labelDepth(tt.Elem, depth+1) + "[" + strings.Repeat(",", int(tt.Count)-1) + "]"
	case KindPointer:
		return in.labelDepth(tt.Elem, depth+1) + "*"
	case KindRef:
		return "ref " + in.labelDepth(tt.Elem, depth+1)
	case KindNullable:
		return in.labelDepth(tt.Elem, depth+1) + "?"
	case KindTuple:
		elems := in.TupleElems(id)
		parts := make([]string, len(elems))
		for i, elem := range elems {
			parts[i] = in.labelDepth(elem, depth+1)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindTypeParam:
		info, _ := in.TypeParam(id)
		return info.Name
	case KindLambda:
		sig, _ := in.Signature(id)
		return "lambda" + in.signatureLabel(sig, depth)
	case KindMethodGroup:
		group, _ := in.MethodGroup(id)
		return "method group " + group.Name + "/" + strconv.Itoa(len(group.Overloads))
	case KindClass, KindStruct, KindInterface, KindEnum, KindDelegate:
		info, ok := in.Nominal(id)
		if !ok {
			return "?"
		}
		args := info.Args
		if info.Def == id {
			args = info.Params
		}
		if len(args) == 0 {
			return info.Name
		}
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = in.labelDepth(arg, depth+1)
		}
		return info.Name + "<" + strings.Join(parts, ", ") + ">"
	default:
		return tt.Kind.String()
	}
}

func (in *Interner) signatureLabel(sig Signature, depth int) string {
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		parts[i] = in.labelDepth(p, depth+1)
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + in.labelDepth(sig.Result, depth+1)
}

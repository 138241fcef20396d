package scenario

import (
	"fmt"
	"strings"
	"unicode"

	"convres/internal/types"
)

// scope maps names visible in a type expression to types. Lookups fall
// through to the parent scope.
type scope struct {
	names  map[string]types.TypeID
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]types.TypeID), parent: parent}
}

func (s *scope) lookup(name string) (types.TypeID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return types.NoTypeID, false
}

func (s *scope) define(name string, id types.TypeID) error {
	if _, dup := s.names[name]; dup {
		return fmt.Errorf("%q declared twice", name)
	}
	s.names[name] = id
	return nil
}

// typeParser reads type expressions written the way the interner labels
// types:
//
//	int  Dog  IEnumerable<Dog>  int?  Dog[]  int[,]  int*  (int, string)  !Missing
//
// A leading '!' names an unresolved type and yields an erroneous type.
type typeParser struct {
	in  *types.Interner
	src string
	pos int
	sc  *scope
}

func parseType(in *types.Interner, sc *scope, src string) (types.TypeID, error) {
	p := &typeParser{in: in, src: src, sc: sc}
	id, err := p.parse()
	if err != nil {
		return types.NoTypeID, fmt.Errorf("type %q: %w", src, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: unexpected %q at %d", src, p.src[p.pos:], p.pos)
	}
	return id, nil
}

func (p *typeParser) parse() (types.TypeID, error) {
	id, err := p.primary()
	if err != nil {
		return types.NoTypeID, err
	}
	for {
		p.skipSpace()
		switch {
		case p.eat('?'):
			id = p.in.Nullable(id)
		case p.eat('*'):
			id = p.in.Pointer(id)
		case p.eat('['):
			rank := uint32(1)
			for p.eat(',') {
				rank++
			}
			if !p.eat(']') {
				return types.NoTypeID, fmt.Errorf("missing ']' at %d", p.pos)
			}
			id = p.in.Array(id, rank)
		default:
			return id, nil
		}
	}
}

func (p *typeParser) primary() (types.TypeID, error) {
	p.skipSpace()
	if p.eat('(') {
		elems, err := p.list(')')
		if err != nil {
			return types.NoTypeID, err
		}
		if len(elems) < 2 {
			return types.NoTypeID, fmt.Errorf("tuple needs at least two elements")
		}
		return p.in.RegisterTuple(elems), nil
	}
	if p.eat('!') {
		return p.in.Erroneous(p.ident()), nil
	}
	if strings.HasPrefix(p.src[p.pos:], "ref ") {
		p.pos += len("ref ")
		elem, err := p.parse()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Ref(elem), nil
	}
	name := p.ident()
	if name == "" {
		return types.NoTypeID, fmt.Errorf("expected type name at %d", p.pos)
	}
	id, ok := p.sc.lookup(name)
	if !ok {
		return types.NoTypeID, fmt.Errorf("unknown type %q", name)
	}
	p.skipSpace()
	if !p.eat('<') {
		return id, nil
	}
	args, err := p.list('>')
	if err != nil {
		return types.NoTypeID, err
	}
	if want := len(p.in.TypeParams(id)); want != len(args) || p.in.Definition(id) != id {
		return types.NoTypeID, fmt.Errorf("%s expects %d type arguments, got %d", name, want, len(args))
	}
	return p.in.Instantiate(id, args...), nil
}

func (p *typeParser) list(closer byte) ([]types.TypeID, error) {
	var out []types.TypeID
	for {
		id, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		p.skipSpace()
		if p.eat(closer) {
			return out, nil
		}
		if !p.eat(',') {
			return nil, fmt.Errorf("expected ',' or %q at %d", closer, p.pos)
		}
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) eat(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

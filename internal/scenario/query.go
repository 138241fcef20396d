package scenario

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"convres/internal/budget"
	"convres/internal/conv"
	"convres/internal/diag"
	"convres/internal/overload"
	"convres/internal/types"
)

// QueryKind tells which engine entry point a query exercises.
type QueryKind uint8

const (
	QueryClassify QueryKind = iota
	QueryBetter
	QueryResolve
)

func (k QueryKind) String() string {
	switch k {
	case QueryBetter:
		return "better"
	case QueryResolve:
		return "resolve"
	default:
		return "classify"
	}
}

// Query is a compiled query. Every type it mentions has been resolved.
type Query struct {
	Kind QueryKind
	Name string
	eval func(p *Program) Outcome
}

// Outcome is the result of evaluating one query.
type Outcome struct {
	Kind string `json:"kind" msgpack:"kind"`
	Name string `json:"name" msgpack:"name"`
	Got  string `json:"got" msgpack:"got"`
	Want string `json:"want,omitempty" msgpack:"want,omitempty"`
	Pass bool   `json:"pass" msgpack:"pass"`
	// Mismatches describes each failed expectation.
	Mismatches  []string `json:"mismatches,omitempty" msgpack:"mismatches,omitempty"`
	Diagnostics string   `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	Explain     []string `json:"explain,omitempty" msgpack:"explain,omitempty"`
}

func (o *Outcome) expect(what, want, got string) {
	if want == "" || want == got {
		return
	}
	o.Mismatches = append(o.Mismatches, fmt.Sprintf("%s: want %s, got %s", what, want, got))
}

func (o *Outcome) finish() Outcome {
	o.Pass = len(o.Mismatches) == 0
	return *o
}

// Eval evaluates the query against the program it was compiled for.
func (q Query) Eval(p *Program) Outcome {
	return q.eval(p)
}

func queryName(kind string, i int, name string) string {
	if name != "" {
		return name
	}
	return kind + " #" + strconv.Itoa(i)
}

func (p *Program) compileClassify(i int, q ClassifyQuery) (Query, error) {
	cq := Query{Kind: QueryClassify, Name: queryName("classify", i, q.Name)}
	src, err := p.Universe.Type(q.Src)
	if err != nil {
		return cq, err
	}
	dst, err := p.Universe.Type(q.Dst)
	if err != nil {
		return cq, err
	}
	mode, err := conv.ParseMode(q.Mode)
	if err != nil {
		return cq, err
	}
	codes, err := parseCodes(q.Diagnostics)
	if err != nil {
		return cq, err
	}
	cq.eval = func(p *Program) Outcome {
		depth := p.MaxDepth
		if q.MaxDepth > 0 {
			depth = q.MaxDepth
		}
		ctx := conv.Context{Mode: mode, Budget: budget.New(depth)}
		if q.Constant != nil {
			ctx = ctx.WithConstant(*q.Constant)
		}
		res, bag := p.Classifier.Classify(src, dst, ctx)
		o := Outcome{Kind: cq.Kind.String(), Name: cq.Name, Got: res.String(), Want: q.Expect}
		got := res.Kind().String()
		if strings.ContainsAny(q.Expect, "([") {
			got = res.String()
		}
		o.expect("conversion", q.Expect, got)
		o.expect("failure", q.Failure, res.Failure().String())
		if codes != nil {
			o.expect("diagnostics", joinCodes(sortedCodes(codes)), joinCodes(sortedCodes(bagCodes(bag))))
		}
		o.Diagnostics = diag.FormatGoldenDiagnostics(bag.Items(), p.Universe.Interner)
		return o.finish()
	}
	return cq, nil
}

func (p *Program) compileBetter(i int, q BetterQuery) (Query, error) {
	cq := Query{Kind: QueryBetter, Name: queryName("better", i, q.Name)}
	var ids [3]types.TypeID
	for k, expr := range []string{q.From, q.A, q.B} {
		id, err := p.Universe.Type(expr)
		if err != nil {
			return cq, err
		}
		ids[k] = id
	}
	switch q.Expect {
	case "", "Left", "Right", "Neither":
	default:
		return cq, fmt.Errorf("invalid expectation %q (expected: Left|Right|Neither)", q.Expect)
	}
	cq.eval = func(p *Program) Outcome {
		ctx := conv.Context{Mode: conv.ModeImplicit, Budget: budget.New(p.MaxDepth)}
		a, _ := p.Classifier.Classify(ids[0], ids[1], ctx)
		b, _ := p.Classifier.Classify(ids[0], ids[2], ctx)
		got := p.Classifier.Better(ids[0], a, b)
		o := Outcome{Kind: cq.Kind.String(), Name: cq.Name, Got: got.String(), Want: q.Expect}
		o.expect("betterness", q.Expect, got.String())
		o.Explain = []string{"a: " + a.String(), "b: " + b.String()}
		return o.finish()
	}
	return cq, nil
}

func (p *Program) compileResolve(i int, q ResolveQuery) (Query, error) {
	cq := Query{Kind: QueryResolve, Name: queryName("resolve", i, q.Name)}
	members := make([]*overload.Member, len(q.Members))
	for k, md := range q.Members {
		m, err := p.member(md)
		if err != nil {
			return cq, fmt.Errorf("member %d: %w", k, err)
		}
		members[k] = m
	}
	args := make([]overload.Argument, len(q.Args))
	for k, ad := range q.Args {
		id, err := p.Universe.Type(ad.Type)
		if err != nil {
			return cq, fmt.Errorf("argument %d: %w", k, err)
		}
		args[k] = overload.Argument{Name: ad.Name, Type: id}
		if ad.Constant != nil {
			args[k].Constant = conv.IntConstant(*ad.Constant)
		}
	}
	switch q.Expect {
	case "", overload.UniqueBest.String(), overload.Ambiguous.String(), overload.NoApplicableCandidate.String():
	default:
		return cq, fmt.Errorf("invalid expectation %q", q.Expect)
	}
	explain, err := parseCodes(q.Explain)
	if err != nil {
		return cq, err
	}
	cq.eval = func(p *Program) Outcome {
		res := p.Resolver.Resolve(members, args)
		o := Outcome{Kind: cq.Kind.String(), Name: cq.Name, Got: res.String(), Want: q.Expect}
		o.expect("outcome", q.Expect, res.Outcome.String())
		if q.Best != nil {
			got := "none"
			if res.OK() {
				got = strconv.Itoa(res.Best.Index)
			}
			o.expect("best", strconv.Itoa(*q.Best), got)
		}
		if q.Tied != nil {
			tied := make([]int, len(res.Tied))
			for k, c := range res.Tied {
				tied[k] = c.Index
			}
			if !slices.Equal(q.Tied, tied) {
				o.Mismatches = append(o.Mismatches, fmt.Sprintf("tied: want %v, got %v", q.Tied, tied))
			}
		}
		ex := overload.Explain(res)
		got := make([]diag.Code, len(ex))
		for k, e := range ex {
			got[k] = e.Code
			o.Explain = append(o.Explain, p.explanation(e))
		}
		if explain != nil {
			o.expect("explain", joinCodes(explain), joinCodes(got))
		}
		o.Diagnostics = diag.FormatGoldenDiagnostics(res.Diagnostics.Items(), p.Universe.Interner)
		return o.finish()
	}
	return cq, nil
}

// member builds an overload candidate. Parameter types are resolved twice:
// once with the member's type parameters bound to its type arguments and
// once as declared.
func (p *Program) member(md MemberDecl) (*overload.Member, error) {
	in := p.Universe.Interner
	if len(md.TypeArgs) != len(md.TypeParams) {
		return nil, fmt.Errorf("%s has %d type parameters but %d type arguments", md.Name, len(md.TypeParams), len(md.TypeArgs))
	}
	declared := newScope(p.Universe.global)
	bound := newScope(p.Universe.global)
	m := &overload.Member{Name: md.Name}
	for k, tpd := range md.TypeParams {
		idx, err := safeIndex(k)
		if err != nil {
			return nil, err
		}
		tp := in.NewMethodTypeParam(tpd.Name, idx)
		if err := declared.define(tpd.Name, tp); err != nil {
			return nil, err
		}
		arg, err := p.Universe.Type(md.TypeArgs[k])
		if err != nil {
			return nil, err
		}
		if err := bound.define(tpd.Name, arg); err != nil {
			return nil, err
		}
		m.TypeParams = append(m.TypeParams, tp)
		m.TypeArgs = append(m.TypeArgs, arg)
	}
	for k, tpd := range md.TypeParams {
		if err := constrain(in, declared, m.TypeParams[k], tpd); err != nil {
			return nil, err
		}
	}
	for k, pd := range md.Params {
		typ, err := parseType(in, bound, pd.Type)
		if err != nil {
			return nil, err
		}
		decl, err := parseType(in, declared, pd.Type)
		if err != nil {
			return nil, err
		}
		if decl == typ {
			decl = types.NoTypeID
		}
		name := pd.Name
		if name == "" {
			name = "p" + strconv.Itoa(k)
		}
		m.Params = append(m.Params, overload.Param{
			Name:       name,
			Type:       typ,
			Declared:   decl,
			HasDefault: pd.Default,
			Variadic:   pd.Variadic,
		})
	}
	if err := checkParams(in, m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkParams rejects parameter lists the resolver would treat as a
// contract violation.
func checkParams(in *types.Interner, m *overload.Member) error {
	for k, prm := range m.Params {
		if !prm.Variadic {
			continue
		}
		if k != len(m.Params)-1 {
			return fmt.Errorf("params parameter %s must be last", prm.Name)
		}
		if in.Kind(prm.Type) != types.KindArray {
			return fmt.Errorf("params parameter %s must be an array", prm.Name)
		}
	}
	return nil
}

func (p *Program) explanation(e overload.Explanation) string {
	if len(e.Types) == 0 {
		return e.String()
	}
	names := make([]string, len(e.Types))
	for k, id := range e.Types {
		names[k] = p.Name(id)
	}
	return e.String() + " (" + strings.Join(names, ", ") + ")"
}

func parseCodes(ids []string) ([]diag.Code, error) {
	if ids == nil {
		return nil, nil
	}
	out := make([]diag.Code, 0, len(ids))
	for _, id := range ids {
		code, ok := diag.ParseID(id)
		if !ok {
			return nil, fmt.Errorf("unknown diagnostic code %q", id)
		}
		out = append(out, code)
	}
	return out, nil
}

func bagCodes(bag *diag.Bag) []diag.Code {
	items := bag.Items()
	out := make([]diag.Code, 0, len(items))
	for _, d := range items {
		out = append(out, d.Code)
	}
	return out
}

func sortedCodes(codes []diag.Code) []diag.Code {
	out := slices.Clone(codes)
	slices.Sort(out)
	return out
}

func safeIndex(k int) (uint32, error) {
	idx, err := safecast.Conv[uint32](k)
	if err != nil {
		return 0, fmt.Errorf("type parameter index: %w", err)
	}
	return idx, nil
}

func joinCodes(codes []diag.Code) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = c.ID()
	}
	return strings.Join(parts, ",")
}

package scenario

import (
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"convres/internal/budget"
	"convres/internal/conv"
	"convres/internal/overload"
	"convres/internal/rules"
	"convres/internal/trace"
	"convres/internal/types"
)

// Options configures how scenarios are compiled and run.
type Options struct {
	// Rules overrides the rule file named by the scenario.
	Rules *rules.Rules
	// MaxDepth overrides the scenario's recursion budget when positive.
	MaxDepth int
	// Jobs bounds parallel work; zero or less means one job per query.
	Jobs   int
	Tracer trace.Tracer
}

// Program is a compiled scenario, ready to run any number of times.
type Program struct {
	Scenario   *Scenario
	Universe   *Universe
	Rules      *rules.Rules
	Classifier *conv.Classifier
	Resolver   *overload.Resolver
	MaxDepth   int
	Queries    []Query
	Tracer     trace.Tracer
}

// Compile loads the rules of sc, builds its universe and compiles every
// query.
func Compile(sc *Scenario, opts Options) (*Program, error) {
	rs, err := scenarioRules(sc, opts)
	if err != nil {
		return nil, err
	}
	u, err := Build(&sc.File, rs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Name, err)
	}
	depth := sc.MaxDepth
	if opts.MaxDepth > 0 {
		depth = opts.MaxDepth
	}
	if depth <= 0 {
		depth = budget.DefaultMax
	}
	c := conv.New(u.Interner, rs, conv.WithTracer(opts.Tracer))
	p := &Program{
		Scenario:   sc,
		Universe:   u,
		Rules:      rs,
		Classifier: c,
		Resolver:   overload.New(c, overload.WithTracer(opts.Tracer), overload.WithMaxDepth(depth)),
		MaxDepth:   depth,
		Tracer:     opts.Tracer,
	}
	for i, q := range sc.Classify {
		cq, err := p.compileClassify(i, q)
		if err != nil {
			return nil, fmt.Errorf("%s: classify %q: %w", sc.Name, cq.Name, err)
		}
		p.Queries = append(p.Queries, cq)
	}
	for i, q := range sc.Better {
		cq, err := p.compileBetter(i, q)
		if err != nil {
			return nil, fmt.Errorf("%s: better %q: %w", sc.Name, cq.Name, err)
		}
		p.Queries = append(p.Queries, cq)
	}
	for i, q := range sc.Resolve {
		cq, err := p.compileResolve(i, q)
		if err != nil {
			return nil, fmt.Errorf("%s: resolve %q: %w", sc.Name, cq.Name, err)
		}
		p.Queries = append(p.Queries, cq)
	}
	return p, nil
}

func scenarioRules(sc *Scenario, opts Options) (*rules.Rules, error) {
	rs := opts.Rules
	if rs == nil && sc.Rules != "" {
		path := sc.Rules
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.Dir(), path)
		}
		loaded, err := rules.Load(path)
		if err != nil {
			return nil, err
		}
		rs = loaded
	}
	if rs == nil {
		rs = rules.Default()
	}
	if sc.LanguageVersion != "" {
		v, err := semver.NewVersion(sc.LanguageVersion)
		if err != nil {
			return nil, fmt.Errorf("%s: language_version: %w", sc.Name, err)
		}
		rs = rs.WithVersion(v)
	}
	return rs, nil
}

// Find returns the query with the given name.
func (p *Program) Find(name string) (Query, bool) {
	for _, q := range p.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}

// Name renders a type of the universe.
func (p *Program) Name(id types.TypeID) string {
	return p.Universe.Interner.Name(id)
}

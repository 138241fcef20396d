package scenario

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"convres/internal/trace"
)

// Report is the result of running every query of one scenario.
type Report struct {
	Scenario string    `json:"scenario" msgpack:"scenario"`
	Path     string    `json:"path,omitempty" msgpack:"path,omitempty"`
	Digest   string    `json:"digest" msgpack:"digest"`
	Outcomes []Outcome `json:"outcomes" msgpack:"outcomes"`
	Passed   int       `json:"passed" msgpack:"passed"`
	Failed   int       `json:"failed" msgpack:"failed"`
}

// OK reports whether every expectation held.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Run evaluates every query of p, at most opts.Jobs at a time. Outcomes
// keep query order whatever the scheduling.
func Run(ctx context.Context, p *Program, opts Options) (*Report, error) {
	if p.Tracer != nil {
		ctx = trace.WithTracer(ctx, p.Tracer)
	}
	ctx, span := trace.Start(ctx, trace.ScopeScenario, "scenario")
	span.WithExtra("name", p.Scenario.Name).WithExtra("queries", strconv.Itoa(len(p.Queries)))

	out := make([]Outcome, len(p.Queries))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, q := range p.Queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, qspan := trace.Start(ctx, trace.ScopeQuery, "query")
			out[i] = q.Eval(p)
			qspan.WithExtra("kind", out[i].Kind).WithExtra("name", q.Name)
			qspan.End(passLabel(out[i].Pass))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End(err.Error())
		return nil, fmt.Errorf("%s: %w", p.Scenario.Name, err)
	}
	rep := &Report{
		Scenario: p.Scenario.Name,
		Path:     p.Scenario.Path,
		Digest:   p.Scenario.Digest(),
		Outcomes: out,
	}
	for _, o := range out {
		if o.Pass {
			rep.Passed++
		} else {
			rep.Failed++
		}
	}
	span.WithExtra("failed", strconv.Itoa(rep.Failed))
	span.End(passLabel(rep.OK()))
	return rep, nil
}

func passLabel(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

// RunAll compiles and runs several scenarios concurrently. Reports come
// back in input order; the first compile error cancels the rest.
func RunAll(ctx context.Context, scs []*Scenario, opts Options) ([]*Report, error) {
	reports := make([]*Report, len(scs))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, sc := range scs {
		g.Go(func() error {
			p, err := Compile(sc, opts)
			if err != nil {
				return err
			}
			// queries stay sequential inside a scenario worker
			rep, err := Run(ctx, p, Options{Jobs: 1})
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// ObjectiveKind selects an Objective's optimization sense (spec.md §3.5).
type ObjectiveKind int

const (
	Minimize ObjectiveKind = iota
	Maximize
	Exact
)

// Objective is spec.md §3.5's (name, indicator, kind, weight) tuple.
type Objective struct {
	namedUIDObject
	Indicator *Indicator
	Kind      ObjectiveKind
	Weight    int64
	exactVal  int64 // meaningful only when Kind == Exact
}

// NewObjective constructs a minimize/maximize objective with a positive
// integer weight.
func NewObjective(r *registry, name string, indicator *Indicator, kind ObjectiveKind, weight int64) (*Objective, error) {
	if weight < 1 {
		return nil, newModelError("objective %q: weight must be >= 1, got %d", name, weight)
	}
	if err := r.register(kindObjective, name); err != nil {
		return nil, err
	}
	return &Objective{namedUIDObject: newNamedUIDObject(name), Indicator: indicator, Kind: kind, Weight: weight}, nil
}

// NewExactObjective constructs an objective that pins the indicator to an
// exact target value rather than minimizing or maximizing it.
func NewExactObjective(r *registry, name string, indicator *Indicator, target int64) (*Objective, error) {
	if err := r.register(kindObjective, name); err != nil {
		return nil, err
	}
	return &Objective{namedUIDObject: newNamedUIDObject(name), Indicator: indicator, Kind: Exact, Weight: 1, exactVal: target}, nil
}

// signedTerm returns w_i * (+I_i_val) for minimize/exact or w_i * (-I_i_val)
// for maximize, the per-objective summand of spec.md §4.9's "Incremental"
// weighted sum E.
func (o *Objective) signedTerm(ctx *EncoderCtx) z3.AST {
	v := o.Indicator.Value
	if o.Kind == Maximize {
		v = z3.Neg(v)
	}
	if o.Weight == 1 {
		return v
	}
	return z3.Mul(ctx.IntVal(o.Weight), v)
}

// contributeExact asserts Indicator.Value == exactVal for an Exact
// objective; called once up front by Problem.encode rather than folded into
// the incremental/optimize loops, since an exact target is a hard constraint
// and not something either solving strategy needs to search for.
func (o *Objective) contributeExact(ctx *EncoderCtx) {
	if o.Kind != Exact {
		return
	}
	ctx.Assert(o.varName(kindObjective, "exact"), z3.Eq(o.Indicator.Value, ctx.IntVal(o.exactVal)))
}

// weightedSum builds spec.md §4.9's E = Σ w_i * (± I_i_val) over every
// non-exact objective in objs.
func weightedSum(ctx *EncoderCtx, objs []*Objective) z3.AST {
	var terms []z3.AST
	for _, o := range objs {
		if o.Kind == Exact {
			continue
		}
		terms = append(terms, o.signedTerm(ctx))
	}
	return ctx.Sum(terms...)
}

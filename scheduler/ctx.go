package scheduler

import (
	"github.com/tpaviot/go-scheduler/z3"
)

// backend is the minimal surface the encoder needs from whichever Z3 handle
// drives the current solve: either a plain *z3.Solver (incremental strategy)
// or a *z3.Optimize (optimize-backend strategy). Modeling this as a small
// interface rather than branching on a type tag throughout the encoder
// mirrors how z3/ast_utils.go's AST.Walk takes a visitor function instead of
// a class hierarchy (spec.md §9's "dynamic dispatch" translation strategy).
type backend interface {
	Assert(a z3.AST)
	Push()
	Pop()
	Check() (z3.CheckResult, error)
	CheckAssumptions(assumptions []z3.AST) (z3.CheckResult, error)
	UnsatCore() []z3.AST
	Model() *z3.Model
}

// solverBackend adapts *z3.Solver's Pop(n uint) to backend's no-arg Pop.
type solverBackend struct{ s *z3.Solver }

func (b solverBackend) Assert(a z3.AST) { b.s.Assert(a) }
func (b solverBackend) Push()           { b.s.Push() }
func (b solverBackend) Pop()            { b.s.Pop(1) }
func (b solverBackend) Check() (z3.CheckResult, error) { return b.s.Check() }
func (b solverBackend) CheckAssumptions(assumptions []z3.AST) (z3.CheckResult, error) {
	return b.s.CheckAssumptions(assumptions)
}
func (b solverBackend) UnsatCore() []z3.AST { return b.s.UnsatCore() }
func (b solverBackend) Model() *z3.Model    { return b.s.Model() }

// optimizeBackend adapts *z3.Optimize to the backend interface.
type optimizeBackend struct{ o *z3.Optimize }

func (b optimizeBackend) Assert(a z3.AST) { b.o.Assert(a) }
func (b optimizeBackend) Push()           { b.o.Push() }
func (b optimizeBackend) Pop()            { b.o.Pop() }
func (b optimizeBackend) Check() (z3.CheckResult, error) { return b.o.Check() }
func (b optimizeBackend) CheckAssumptions(assumptions []z3.AST) (z3.CheckResult, error) {
	return b.o.CheckAssumptions(assumptions)
}
func (b optimizeBackend) UnsatCore() []z3.AST { return b.o.UnsatCore() }
func (b optimizeBackend) Model() *z3.Model    { return b.o.Model() }

// guard pairs a debug-mode tracking boolean with the human-readable
// constraint identity it stands for, so an unsat core can be mapped back to
// constraint names (spec.md §4.9 "Debug mode").
type guard struct {
	label string
	pvar  z3.AST
}

// EncoderCtx is threaded through every entity's contribute method. It owns
// the Z3 context, the active backend, the horizon term, and the var caches
// that let later phases (cross-task resource encoding, constraints,
// indicators, objectives) look up variables earlier phases created, per
// spec.md §9's "no cycles in ownership, name-indexed arena, EncoderCtx
// exposes variable lookup" translation strategy.
type EncoderCtx struct {
	z        *z3.Context
	backend  backend
	horizon  z3.AST
	debug    bool
	intVars  map[string]z3.AST
	boolVars map[string]z3.AST
	guards   []guard
}

func newEncoderCtx(zctx *z3.Context, be backend, debug bool) *EncoderCtx {
	return &EncoderCtx{
		z:        zctx,
		backend:  be,
		debug:    debug,
		intVars:  make(map[string]z3.AST),
		boolVars: make(map[string]z3.AST),
	}
}

// Int returns the integer decision variable for name, creating it on first
// use so entities can call this idempotently from contribute hooks that may
// run more than once during a single encode pass.
func (c *EncoderCtx) Int(name string) z3.AST {
	if v, ok := c.intVars[name]; ok {
		return v
	}
	v := c.z.Const(name, c.z.IntSort())
	c.intVars[name] = v
	return v
}

// Bool returns the boolean decision variable for name, creating it on first
// use.
func (c *EncoderCtx) Bool(name string) z3.AST {
	if v, ok := c.boolVars[name]; ok {
		return v
	}
	v := c.z.Const(name, c.z.BoolSort())
	c.boolVars[name] = v
	return v
}

// IntVal and BoolVal forward to the underlying context; they exist on
// EncoderCtx so entity code never needs to hold a *z3.Context directly.
func (c *EncoderCtx) IntVal(v int64) z3.AST  { return c.z.IntVal(v) }
func (c *EncoderCtx) BoolVal(b bool) z3.AST  { return c.z.BoolVal(b) }
func (c *EncoderCtx) Horizon() z3.AST        { return c.horizon }

// Assert adds a to the active backend. In debug mode, per spec.md §4.9's
// "Debug mode", the assertion is reified behind a fresh tracking boolean
// (label → p_label) instead of being asserted directly, so an UNSAT result
// can later be explained with an unsat core of human-readable labels.
func (c *EncoderCtx) Assert(label string, a z3.AST) {
	if !c.debug {
		c.backend.Assert(a)
		return
	}
	p := c.Bool("track_" + label)
	c.backend.Assert(z3.Implies(p, a))
	c.guards = append(c.guards, guard{label: label, pvar: p})
}

// Sum builds the integer sum of the given terms, returning the zero literal
// for an empty slice (several callers build sums over possibly-empty
// candidate lists, e.g. an unused resource or an empty task group).
func (c *EncoderCtx) Sum(terms ...z3.AST) z3.AST {
	if len(terms) == 0 {
		return c.IntVal(0)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return z3.Add(terms...)
}

// BoolToInt converts a boolean AST into the integer 0/1 term used throughout
// the cardinality and cumulative-capacity encodings (spec.md §4.3/§4.5).
func (c *EncoderCtx) BoolToInt(b z3.AST) z3.AST {
	return z3.Ite(b, c.IntVal(1), c.IntVal(0))
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/tpaviot/go-scheduler/z3"
)

// OptimizerKind selects the solving strategy spec.md §4.9 describes for
// multi-objective problems: drive a plain incremental Solver by hand, or
// delegate to Z3's native Optimize object.
type OptimizerKind int

const (
	// OptimizerIncremental builds a weighted-sum term E and tightens E < v on
	// every improving iteration, per spec.md §4.9's "Incremental" strategy.
	OptimizerIncremental OptimizerKind = iota
	// OptimizerNative delegates to *z3.Optimize's Minimize/Maximize/Check,
	// honoring OptimizePriority for multi-objective problems.
	OptimizerNative
)

// OptimizePriority selects how *z3.Optimize combines more than one
// registered objective (spec.md §4.9's "optimize-backend strategy").
type OptimizePriority string

const (
	PriorityLex    OptimizePriority = "lex"
	PriorityBox    OptimizePriority = "box"
	PriorityPareto OptimizePriority = "pareto"
)

// Options configures a Solver, following spec.md §4.9's solving-options
// table.
type Options struct {
	Debug            bool
	MaxTimeS         int
	RandomValues     bool
	Logic            string
	Verbosity        int
	Optimizer        OptimizerKind
	OptimizePriority OptimizePriority
}

// DefaultOptions returns the baseline configuration: incremental optimizer,
// lexicographic priority, debug mode off.
func DefaultOptions() Options {
	return Options{Optimizer: OptimizerIncremental, OptimizePriority: PriorityLex}
}

// Solver drives a single Problem to a Solution, owning the Z3 context and
// encoder state for the lifetime of one Solve/FindAnotherSolution call chain
// (spec.md §5's driver component).
type Solver struct {
	problem *Problem
	opts    Options

	zctx *z3.Context
	ctx  *EncoderCtx

	solver   *z3.Solver
	optimize *z3.Optimize
	be       backend

	encoded bool
}

// NewSolver attaches a fresh Z3 context to problem and prepares the backend
// selected by opts.Optimizer. The problem is encoded lazily on the first
// Solve/FindAnotherSolution call, matching spec.md §3.6's "immutable once
// solve() has been invoked" contract (Problem stays mutable until then).
func NewSolver(problem *Problem, opts Options) *Solver {
	zctx := z3.NewContext(nil)
	s := &Solver{problem: problem, opts: opts, zctx: zctx}

	if opts.RandomValues {
		z3.SetGlobalParam("smt.random_seed", "0")
	}

	switch opts.Optimizer {
	case OptimizerNative:
		o := zctx.NewOptimize()
		if opts.OptimizePriority != "" {
			_ = o.SetPriority(string(opts.OptimizePriority))
		}
		if opts.MaxTimeS > 0 {
			_ = o.SetParam("timeout", fmt.Sprintf("%d", opts.MaxTimeS*1000))
		}
		s.optimize = o
		s.be = optimizeBackend{o}
	default:
		sv := zctx.NewSolver()
		if opts.Logic != "" {
			_ = sv.SetOption("logic", opts.Logic)
		}
		if opts.MaxTimeS > 0 {
			_ = sv.SetOption("timeout", opts.MaxTimeS*1000)
		}
		if opts.Verbosity > 0 {
			_ = sv.SetOption("verbose", opts.Verbosity)
		}
		s.solver = sv
		s.be = solverBackend{sv}
	}

	s.ctx = newEncoderCtx(zctx, s.be, opts.Debug)
	return s
}

// ensureEncoded runs Problem.encode exactly once, flipping the problem's
// mutability flag per spec.md §3.6.
func (s *Solver) ensureEncoded() error {
	if s.encoded {
		return nil
	}
	s.problem.solveStarted = true
	if err := s.problem.encode(s.ctx); err != nil {
		return err
	}
	s.encoded = true
	return nil
}

// checkDeadline maps a cancelled/expired context onto a Timeout Error,
// polled between backend Check calls since the Z3 C API itself only accepts
// a millisecond budget set up front, not a live context.Context.
func checkDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: Timeout, Message: "solve cancelled", Cause: err}
	}
	return nil
}

// unsatError builds a debug-mode Unsatisfiable Error carrying the
// human-readable labels behind the unsat core's tracking booleans, or a
// bare Unsatisfiable Error when debug mode is off.
func (s *Solver) unsatError(core []z3.AST) *Error {
	if !s.opts.Debug || len(core) == 0 {
		return &Error{Kind: Unsatisfiable, Message: "problem has no solution"}
	}
	byVar := make(map[string]string, len(s.ctx.guards))
	for _, g := range s.ctx.guards {
		byVar[g.pvar.String()] = g.label
	}
	labels := make([]string, 0, len(core))
	for _, a := range core {
		if l, ok := byVar[a.String()]; ok {
			labels = append(labels, l)
		} else {
			labels = append(labels, a.String())
		}
	}
	return &Error{Kind: Unsatisfiable, Message: "problem has no solution", Core: labels}
}

// assumptions collects the tracking booleans accumulated in debug mode, for
// use with CheckAssumptions/UnsatCore.
func (s *Solver) assumptions() []z3.AST {
	if !s.opts.Debug {
		return nil
	}
	out := make([]z3.AST, len(s.ctx.guards))
	for i, g := range s.ctx.guards {
		out[i] = g.pvar
	}
	return out
}

func (s *Solver) check() (z3.CheckResult, error) {
	if a := s.assumptions(); a != nil {
		return s.be.CheckAssumptions(a)
	}
	return s.be.Check()
}

// checkError classifies a failed check() call per spec.md §4.9/§7: a
// z3.Unknown verdict is the backend genuinely unable to decide (surfaced as
// Kind: Unknown, distinct from UNSAT), while any other non-nil error is a
// lower-level backend failure (I/O, API misuse) unrelated to the verdict.
func checkError(r z3.CheckResult, err error, what string) *Error {
	if r == z3.Unknown {
		return newUnknownError(err, "%s", what)
	}
	return newBackendFailure(err, "%s", what)
}

// Solve runs the problem to a solution per spec.md §4.9. With no objectives
// registered it is a single feasibility check. With objectives, it dispatches
// to the incremental or native optimize strategy selected by Options.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	if err := s.ensureEncoded(); err != nil {
		return nil, err
	}
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	var activeObjs []*Objective
	for _, o := range s.problem.Objectives {
		if o.Kind != Exact {
			activeObjs = append(activeObjs, o)
		}
	}

	if len(activeObjs) == 0 {
		return s.solveFeasibility()
	}
	if s.opts.Optimizer == OptimizerNative {
		return s.solveNative(ctx, activeObjs)
	}
	return s.solveIncremental(ctx, activeObjs)
}

func (s *Solver) solveFeasibility() (*Solution, error) {
	r, err := s.check()
	if err != nil {
		return nil, checkError(r, err, "feasibility check failed")
	}
	if r == z3.Unsat {
		return nil, s.unsatError(s.be.UnsatCore())
	}
	return extractSolution(s.ctx, s.be.Model(), s.problem, true)
}

// solveIncremental implements spec.md §4.9's "Incremental" strategy: build
// the weighted-sum term E, then repeatedly push a scope, tighten E < v on
// each improving model, and pop back out once no further improvement is
// found, keeping the best model seen as the incumbent.
func (s *Solver) solveIncremental(ctx context.Context, objs []*Objective) (*Solution, error) {
	e := weightedSum(s.ctx, objs)

	r, err := s.check()
	if err != nil {
		return nil, checkError(r, err, "initial feasibility check failed")
	}
	if r == z3.Unsat {
		return nil, s.unsatError(s.be.UnsatCore())
	}

	var incumbent *Solution
	scopeOpen := false
	closeScope := func() {
		if scopeOpen {
			s.be.Pop()
			scopeOpen = false
		}
	}
	defer closeScope()

	for {
		sol, err := extractSolution(s.ctx, s.be.Model(), s.problem, false)
		if err != nil {
			return nil, err
		}
		incumbent = sol

		v, err := evalInt(s.be.Model(), e)
		if err != nil {
			return nil, err
		}

		if err := checkDeadline(ctx); err != nil {
			incumbent.Optimal = false
			return incumbent, nil
		}

		closeScope()
		s.be.Push()
		scopeOpen = true
		s.be.Assert(z3.Lt(e, s.ctx.IntVal(v)))

		r, err = s.check()
		if err != nil {
			// timeout/unknown from the backend: keep the incumbent, just not
			// proven optimal.
			incumbent.Optimal = false
			return incumbent, nil
		}
		if r == z3.Unsat {
			// incumbent is optimal: no assignment beats it.
			incumbent.Optimal = true
			return incumbent, nil
		}
	}
}

// solveNative implements spec.md §4.9's "optimize-backend" strategy: every
// objective is registered with Optimize.Minimize/Maximize up front (the
// priority strategy was already set in NewSolver), then a single Check call
// lets Z3 search all of them together.
func (s *Solver) solveNative(ctx context.Context, objs []*Objective) (*Solution, error) {
	if s.optimize == nil {
		return nil, newEncodingError("native optimizer selected but Optimize backend not initialized")
	}
	for _, o := range objs {
		if o.Kind == Maximize {
			s.optimize.Maximize(o.Indicator.Value)
		} else {
			s.optimize.Minimize(o.Indicator.Value)
		}
	}

	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	r, err := s.check()
	if err != nil {
		return nil, checkError(r, err, "optimize check failed")
	}
	if r == z3.Unsat {
		return nil, s.unsatError(s.be.UnsatCore())
	}
	return extractSolution(s.ctx, s.be.Model(), s.problem, true)
}

// ParetoSolutions returns an iterator over successive Pareto-optimal points,
// following spec.md §9's translation of "call solve until exhausted" into a
// synchronous per-call check() rather than a coroutine: each call to the
// returned function performs one Check against the native Optimize backend
// and returns the next Pareto point, or (nil, nil) once the enumeration is
// exhausted. Only meaningful when Options.Optimizer is OptimizerNative and
// OptimizePriority is "pareto".
func (s *Solver) ParetoSolutions(objs []*Objective) (func() (*Solution, error), error) {
	if s.opts.Optimizer != OptimizerNative || s.opts.OptimizePriority != PriorityPareto {
		return nil, newEncodingError("ParetoSolutions requires OptimizerNative with pareto priority")
	}
	if err := s.ensureEncoded(); err != nil {
		return nil, err
	}
	if s.optimize == nil {
		return nil, newEncodingError("native optimizer selected but Optimize backend not initialized")
	}
	registered := false
	return func() (*Solution, error) {
		if !registered {
			for _, o := range objs {
				if o.Kind == Maximize {
					s.optimize.Maximize(o.Indicator.Value)
				} else {
					s.optimize.Minimize(o.Indicator.Value)
				}
			}
			registered = true
		}
		r, err := s.check()
		if err != nil {
			return nil, checkError(r, err, "pareto check failed")
		}
		if r == z3.Unsat {
			return nil, nil
		}
		return extractSolution(s.ctx, s.be.Model(), s.problem, false)
	}, nil
}

// FindAnotherSolution implements spec.md §4.9's "find another solution"
// facility: it asserts variable != x0 inside a fresh scope, checks, and
// returns the resulting model (or an Unsatisfiable Error if x0 was the only
// value satisfying the problem), leaving the solver's permanent state
// untouched once the scope is popped.
func (s *Solver) FindAnotherSolution(variable z3.AST, x0 int64) (*Solution, error) {
	if err := s.ensureEncoded(); err != nil {
		return nil, err
	}
	s.be.Push()
	defer s.be.Pop()

	s.be.Assert(z3.Eq(variable, s.ctx.IntVal(x0)).Not())
	r, err := s.check()
	if err != nil {
		return nil, checkError(r, err, "find-another-solution check failed")
	}
	if r == z3.Unsat {
		return nil, s.unsatError(s.be.UnsatCore())
	}
	return extractSolution(s.ctx, s.be.Model(), s.problem, false)
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// defaultHorizonCeiling bounds a free (non-fixed) horizon variable, per
// spec.md §2's "itself a decision variable bounded by a large ceiling".
const defaultHorizonCeiling = 100000

// Problem is the container of spec.md §5/§9's "name-indexed arena": it owns
// every task, resource, buffer, constraint, indicator, and objective added
// to it, and walks them in dependency order to emit the SMT problem
// (leaves first, matching the component order spec.md §2 lists).
type Problem struct {
	Name string

	reg            *registry
	horizonFixed   *int64
	horizonCeiling int64

	Tasks       []*Task
	Resources   []*Worker
	Buffers     []*Buffer
	Constraints []Constraint
	Indicators  []*Indicator
	Objectives  []*Objective

	solveStarted bool

	// claims caches the per-resource claim list encode built, so solution
	// extraction can read back SelectWorkers choices without recomputing it.
	claims map[string][]resourceClaim
}

// NewProblem constructs an empty problem. horizon, if non-nil, fixes the
// timeline length; otherwise the horizon becomes a bounded decision
// variable (spec.md §2).
func NewProblem(name string, horizon *int64) *Problem {
	return &Problem{
		Name:           name,
		reg:            newRegistry(),
		horizonFixed:   horizon,
		horizonCeiling: defaultHorizonCeiling,
	}
}

// Registry exposes the per-problem name registry so entity constructors
// (NewWorker, NewBuffer, ...) can register against the right problem.
func (p *Problem) Registry() *registry { return p.reg }

// lifecycle guard: spec.md §3.6 "immutable once solve() has been invoked".
func (p *Problem) checkMutable(what string) error {
	if p.solveStarted {
		return newModelError("cannot add %s: problem is immutable once Solve has started", what)
	}
	return nil
}

func (p *Problem) AddTask(t *Task) error {
	if err := p.checkMutable("task"); err != nil {
		return err
	}
	p.Tasks = append(p.Tasks, t)
	return nil
}

func (p *Problem) AddResource(w *Worker) error {
	if err := p.checkMutable("resource"); err != nil {
		return err
	}
	p.Resources = append(p.Resources, w)
	return nil
}

func (p *Problem) AddBuffer(b *Buffer) error {
	if err := p.checkMutable("buffer"); err != nil {
		return err
	}
	p.Buffers = append(p.Buffers, b)
	return nil
}

func (p *Problem) AddConstraint(c Constraint) error {
	if err := p.checkMutable("constraint"); err != nil {
		return err
	}
	p.Constraints = append(p.Constraints, c)
	return nil
}

func (p *Problem) AddIndicator(i *Indicator) error {
	if err := p.checkMutable("indicator"); err != nil {
		return err
	}
	p.Indicators = append(p.Indicators, i)
	return nil
}

func (p *Problem) AddObjective(o *Objective) error {
	if err := p.checkMutable("objective"); err != nil {
		return err
	}
	p.Objectives = append(p.Objectives, o)
	return nil
}

// resourceClaim is one task's use of one worker, with the guard under which
// that use is active (always true for a concrete assignment, picked_w for a
// SelectWorkers candidate).
type resourceClaim struct {
	task    *Task
	worker  *Worker
	guard   z3.AST
	dynamic bool
}

// claimsByResource walks every task's resource requirements and groups the
// resulting claims by worker name, for the cross-task encoding in encode.
func (p *Problem) claimsByResource(ctx *EncoderCtx) map[string][]resourceClaim {
	out := make(map[string][]resourceClaim)
	for _, t := range p.Tasks {
		for _, req := range t.requirements {
			if req.select_ != nil {
				req.select_.contribute(ctx, t.namedUIDObject)
				for _, w := range req.select_.Candidates {
					out[w.Name()] = append(out[w.Name()], resourceClaim{task: t, worker: w, guard: req.select_.Picked[w.Name()], dynamic: req.dynamic})
				}
				continue
			}
			for _, w := range req.workers {
				out[w.Name()] = append(out[w.Name()], resourceClaim{task: t, worker: w, guard: ctx.BoolVal(true), dynamic: req.dynamic})
			}
		}
	}
	return out
}

// encodeResourceSharing implements spec.md §4.3's non-overlap and
// cumulative-capacity clauses.
func (p *Problem) encodeResourceSharing(ctx *EncoderCtx, claims map[string][]resourceClaim) {
	for _, w := range p.Resources {
		cs := claims[w.Name()]
		if len(cs) < 2 {
			continue
		}
		if !w.IsCumulative() {
			for i := 0; i < len(cs); i++ {
				for j := i + 1; j < len(cs); j++ {
					if cs[i].task == cs[j].task {
						continue
					}
					guard := z3.And(cs[i].task.Scheduled, cs[j].task.Scheduled, cs[i].guard, cs[j].guard)
					nonOverlap := z3.Or(z3.Le(cs[i].task.End, cs[j].task.Start), z3.Le(cs[j].task.End, cs[i].task.Start))
					label := w.varName(kindResource, "nonoverlap_"+cs[i].task.Name()+"_"+cs[j].task.Name())
					ctx.Assert(label, z3.Implies(guard, nonOverlap))
				}
			}
			continue
		}

		// CumulativeWorker: at every claim's start/end instant, the count of
		// claims overlapping that instant must not exceed w.Size
		// (spec.md §4.3's event-instant sum encoding).
		instants := make([]z3.AST, 0, 2*len(cs))
		for _, c := range cs {
			instants = append(instants, c.task.Start, c.task.End)
		}
		for idx, e := range instants {
			terms := make([]z3.AST, 0, len(cs))
			for _, c := range cs {
				overlapsE := z3.And(z3.Le(c.task.Start, e), z3.Lt(e, c.task.End))
				active := z3.And(overlapsE, c.task.Scheduled, c.guard)
				terms = append(terms, ctx.BoolToInt(active))
			}
			count := ctx.Sum(terms...)
			label := w.varName(kindResource, "cumulative_"+itoa(uint32(idx)))
			ctx.Assert(label, z3.Le(count, ctx.IntVal(w.Size)))
		}
	}
}

// encodeWorkAmount implements spec.md §4.3's work-amount clause.
func (p *Problem) encodeWorkAmount(ctx *EncoderCtx, claims map[string][]resourceClaim) error {
	claimsByTask := make(map[*Task][]resourceClaim)
	for _, cs := range claims {
		for _, c := range cs {
			claimsByTask[c.task] = append(claimsByTask[c.task], c)
		}
	}
	for _, t := range p.Tasks {
		if t.WorkAmount <= 0 {
			continue
		}
		cs := claimsByTask[t]
		anyProductive := false
		var terms []z3.AST
		for _, c := range cs {
			if c.worker.Productivity <= 0 {
				continue
			}
			anyProductive = true
			contribution := t.durationContribution(ctx, c.worker, c.dynamic)
			term := z3.Mul(ctx.IntVal(c.worker.Productivity), contribution)
			terms = append(terms, z3.Ite(c.guard, term, ctx.IntVal(0)))
		}
		if !anyProductive {
			return newModelError("task %q: work_amount=%d requires at least one assigned worker with productivity > 0", t.Name(), t.WorkAmount)
		}
		sum := ctx.Sum(terms...)
		ctx.Assert(t.varName(kindTask, "work_amount"), z3.Implies(t.Scheduled, z3.Ge(sum, ctx.IntVal(t.WorkAmount))))
	}
	return nil
}

// encode implements spec.md §5's "walks them in dependency order to emit the
// SMT problem": resources need no contribution of their own; tasks
// contribute their interval variables first, then the encoder emits the
// cross-task resource-sharing and work-amount clauses that need every
// task's Start/End/Scheduled to already exist, then buffers, then
// constraints, then indicators, then objectives.
func (p *Problem) encode(ctx *EncoderCtx) error {
	if p.horizonFixed != nil {
		ctx.horizon = ctx.IntVal(*p.horizonFixed)
	} else {
		h := ctx.Int("horizon")
		ctx.Assert("horizon_bounds", z3.And(z3.Ge(h, ctx.IntVal(0)), z3.Le(h, ctx.IntVal(p.horizonCeiling))))
		ctx.horizon = h
	}

	for _, t := range p.Tasks {
		if err := t.contribute(ctx); err != nil {
			return err
		}
	}

	claims := p.claimsByResource(ctx)
	p.claims = claims
	p.encodeResourceSharing(ctx, claims)
	if err := p.encodeWorkAmount(ctx, claims); err != nil {
		return err
	}

	for _, b := range p.Buffers {
		if err := b.contribute(ctx); err != nil {
			return err
		}
	}

	for _, c := range p.Constraints {
		ctx.Assert("toplevel_"+nameOf(c), c.reify(ctx))
	}

	for _, ind := range p.Indicators {
		if err := ind.contribute(ctx); err != nil {
			return err
		}
	}

	for _, o := range p.Objectives {
		if err := p.checkObjectiveRef(o); err != nil {
			return err
		}
		o.contributeExact(ctx)
	}

	return nil
}

// checkObjectiveRef implements spec.md §7's EncodingError: "objective
// references an indicator not in the problem".
func (p *Problem) checkObjectiveRef(o *Objective) error {
	for _, ind := range p.Indicators {
		if ind == o.Indicator {
			return nil
		}
	}
	return newEncodingError("objective %q references an indicator not added to the problem", o.Name())
}

// nameOf extracts a label for a top-level Constraint, used only for debug
// mode's human-readable tracking names.
func nameOf(c Constraint) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "constraint"
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// overlap returns the integer term "amount of overlap between the task's
// scheduled interval and [a, b]", used by WorkLoad's per-interval sum
// (spec.md §4.5).
func overlap(ctx *EncoderCtx, t *Task, a, b int64) z3.AST {
	lo := z3.Ite(z3.Ge(t.Start, ctx.IntVal(a)), t.Start, ctx.IntVal(a))
	hi := z3.Ite(z3.Le(t.End, ctx.IntVal(b)), t.End, ctx.IntVal(b))
	raw := z3.Sub(hi, lo)
	clamped := z3.Ite(z3.Ge(raw, ctx.IntVal(0)), raw, ctx.IntVal(0))
	return z3.Ite(t.Scheduled, clamped, ctx.IntVal(0))
}

// WorkLoad requires, per interval, the sum of task/interval overlaps on R to
// compare against N per Kind (spec.md §4.5).
type WorkLoad struct {
	constraintBase
	Tasks     []*Task
	Intervals map[[2]int64]int64
	Kind      CardinalityKind
}

func NewWorkLoad(tasks []*Task, intervals map[[2]int64]int64, kind CardinalityKind, optional bool) *WorkLoad {
	c := &WorkLoad{constraintBase: newConstraintBase("WorkLoad", tasks...), Tasks: tasks, Intervals: intervals, Kind: kind}
	c.Optional = optional
	return c
}

func (c *WorkLoad) reify(ctx *EncoderCtx) z3.AST {
	var perInterval []z3.AST
	for iv, n := range c.Intervals {
		terms := make([]z3.AST, 0, len(c.Tasks))
		for _, t := range c.Tasks {
			terms = append(terms, overlap(ctx, t, iv[0], iv[1]))
		}
		sum := ctx.Sum(terms...)
		perInterval = append(perInterval, cardinalityTerm(sum, ctx.IntVal(n), c.Kind))
	}
	if len(perInterval) == 0 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	return c.reifyBody(ctx, z3.And(perInterval...))
}

// NewResourceUnavailable is WorkLoad with n=0, kind=exact over every given
// interval (spec.md §4.5).
func NewResourceUnavailable(tasks []*Task, intervals [][2]int64) *WorkLoad {
	m := make(map[[2]int64]int64, len(intervals))
	for _, iv := range intervals {
		m[iv] = 0
	}
	return NewWorkLoad(tasks, m, CardinalityExact, false)
}

// NewResourcePeriodicallyUnavailable is the SPEC_FULL.md §4.5a variant
// recovered from original_source/resource_constraint.py: intervals repeat
// every period ticks starting at start, optionally offset, and capped at end.
func NewResourcePeriodicallyUnavailable(tasks []*Task, intervals [][2]int64, period, start, offset, end int64) *WorkLoad {
	var expanded [][2]int64
	for t := start; t+period <= end || t == start; t += period {
		for _, iv := range intervals {
			lo, hi := t+offset+iv[0], t+offset+iv[1]
			if lo >= end {
				continue
			}
			if hi > end {
				hi = end
			}
			expanded = append(expanded, [2]int64{lo, hi})
		}
		if period <= 0 {
			break
		}
	}
	return NewResourceUnavailable(tasks, expanded)
}

// ResourceNonDelay requires every pair of tasks actually assigned to R and
// consecutive in the chosen order to be contiguous: Ti.end = Tj.start. This
// resolves spec.md §9's open question against ResourceTasksDistance(d=0,
// mode="exact") by using an explicit position-on-resource integer per task
// (a direct Hamiltonian-chain encoding, per spec.md §4.5) rather than
// reusing ResourceTasksDistance's pairwise-interval machinery, since
// ResourceNonDelay's contiguity must hold for the *whole* resource timeline,
// not just tasks inside a given interval.
type ResourceNonDelay struct {
	constraintBase
	Tasks []*Task
}

func NewResourceNonDelay(tasks []*Task) *ResourceNonDelay {
	return &ResourceNonDelay{constraintBase: newConstraintBase("ResourceNonDelay", tasks...), Tasks: tasks}
}

func (c *ResourceNonDelay) reify(ctx *EncoderCtx) z3.AST {
	n := len(c.Tasks)
	if n < 2 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	positions := make([]z3.AST, n)
	for i, t := range c.Tasks {
		positions[i] = ctx.Int(t.varName(kindTask, c.varName(kindConstraint, "pos")))
		ctx.Assert(t.varName(kindConstraint, "pos_range_"+c.Name()), z3.And(z3.Ge(positions[i], ctx.IntVal(0)), z3.Lt(positions[i], ctx.IntVal(int64(n)))))
	}
	ctx.Assert(c.varName(kindConstraint, "pos_distinct"), z3.Distinct(positions...))

	var clauses []z3.AST
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			immediatelyNext := z3.Eq(positions[j], z3.Add(positions[i], ctx.IntVal(1)))
			bothScheduled := z3.And(c.Tasks[i].Scheduled, c.Tasks[j].Scheduled)
			clauses = append(clauses, z3.Implies(z3.And(immediatelyNext, bothScheduled), z3.Eq(c.Tasks[i].End, c.Tasks[j].Start)))
		}
	}
	return c.reifyBody(ctx, z3.And(clauses...))
}

// DistanceMode selects ResourceTasksDistance's comparison.
type DistanceMode int

const (
	DistanceExact DistanceMode = iota
	DistanceMin
	DistanceMax
)

// ResourceTasksDistance requires, for every consecutive pair of tasks on R
// (optionally restricted to Intervals), next.start - prev.end to compare
// against D per Mode.
type ResourceTasksDistance struct {
	constraintBase
	Tasks     []*Task
	D         int64
	Intervals [][2]int64
	Mode      DistanceMode
}

func NewResourceTasksDistance(tasks []*Task, d int64, intervals [][2]int64, mode DistanceMode) *ResourceTasksDistance {
	return &ResourceTasksDistance{constraintBase: newConstraintBase("ResourceTasksDistance", tasks...), Tasks: tasks, D: d, Intervals: intervals, Mode: mode}
}

func (c *ResourceTasksDistance) reify(ctx *EncoderCtx) z3.AST {
	n := len(c.Tasks)
	if n < 2 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	positions := make([]z3.AST, n)
	for i, t := range c.Tasks {
		positions[i] = ctx.Int(t.varName(kindTask, c.varName(kindConstraint, "pos")))
		ctx.Assert(t.varName(kindConstraint, "pos_range_"+c.Name()), z3.And(z3.Ge(positions[i], ctx.IntVal(0)), z3.Lt(positions[i], ctx.IntVal(int64(n)))))
	}
	ctx.Assert(c.varName(kindConstraint, "pos_distinct"), z3.Distinct(positions...))

	// Position order must track actual start-time order, otherwise positions
	// are a free permutation unrelated to the schedule and "immediately
	// next in position" would not mean "the next task chronologically on R".
	var clauses []z3.AST
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			clauses = append(clauses, z3.Eq(z3.Lt(positions[i], positions[j]), z3.Le(c.Tasks[i].Start, c.Tasks[j].Start)))
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			immediatelyNext := z3.Eq(positions[j], z3.Add(positions[i], ctx.IntVal(1)))
			dist := z3.Sub(c.Tasks[j].Start, c.Tasks[i].End)
			var cmp z3.AST
			switch c.Mode {
			case DistanceMin:
				cmp = z3.Ge(dist, ctx.IntVal(c.D))
			case DistanceMax:
				cmp = z3.Le(dist, ctx.IntVal(c.D))
			default:
				cmp = z3.Eq(dist, ctx.IntVal(c.D))
			}
			guard := z3.And(immediatelyNext, c.Tasks[i].Scheduled, c.Tasks[j].Scheduled)
			if len(c.Intervals) > 0 {
				guard = z3.And(guard, insideAny(ctx, c.Tasks[i], c.Intervals))
			}
			clauses = append(clauses, z3.Implies(guard, cmp))
		}
	}
	return c.reifyBody(ctx, z3.And(clauses...))
}

func insideAny(ctx *EncoderCtx, t *Task, intervals [][2]int64) z3.AST {
	parts := make([]z3.AST, 0, len(intervals))
	for _, iv := range intervals {
		parts = append(parts, z3.And(z3.Ge(t.Start, ctx.IntVal(iv[0])), z3.Le(t.End, ctx.IntVal(iv[1]))))
	}
	if len(parts) == 0 {
		return ctx.BoolVal(false)
	}
	return z3.Or(parts...)
}

// DistinctWorkers requires no candidate to be picked in both selection
// groups: !(exists w: picked_w_in_S1 && picked_w_in_S2).
type DistinctWorkers struct {
	constraintBase
	S1, S2 *SelectWorkers
}

func NewDistinctWorkers(s1, s2 *SelectWorkers) *DistinctWorkers {
	return &DistinctWorkers{constraintBase: newConstraintBase("DistinctWorkers"), S1: s1, S2: s2}
}

func (c *DistinctWorkers) reify(ctx *EncoderCtx) z3.AST {
	var clauses []z3.AST
	for name, p1 := range c.S1.Picked {
		if p2, ok := c.S2.Picked[name]; ok {
			clauses = append(clauses, z3.And(p1, p2).Not())
		}
	}
	if len(clauses) == 0 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	return c.reifyBody(ctx, z3.And(clauses...))
}

// SameWorkers requires every candidate's membership in S1 to match its
// membership in S2: forall w: picked_w_in_S1 <-> picked_w_in_S2.
type SameWorkers struct {
	constraintBase
	S1, S2 *SelectWorkers
}

func NewSameWorkers(s1, s2 *SelectWorkers) *SameWorkers {
	return &SameWorkers{constraintBase: newConstraintBase("SameWorkers"), S1: s1, S2: s2}
}

func (c *SameWorkers) reify(ctx *EncoderCtx) z3.AST {
	seen := make(map[string]bool)
	var clauses []z3.AST
	for name, p1 := range c.S1.Picked {
		seen[name] = true
		p2, ok := c.S2.Picked[name]
		if !ok {
			clauses = append(clauses, p1.Not())
			continue
		}
		clauses = append(clauses, z3.Eq(p1, p2))
	}
	for name, p2 := range c.S2.Picked {
		if !seen[name] {
			clauses = append(clauses, p2.Not())
		}
	}
	if len(clauses) == 0 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	return c.reifyBody(ctx, z3.And(clauses...))
}

// InterruptionStretch is the SPEC_FULL.md §4.5a "does not stop being
// assigned, instead stretches duration/records overlap" family:
// ResourceInterrupted and ResourcePeriodicallyInterrupted both reduce to
// this shared body over an explicit list of interrupting intervals.
type InterruptionStretch struct {
	constraintBase
	T         *Task
	Intervals [][2]int64
}

// NewResourceInterrupted builds the constraint for the given intervals as-is.
func NewResourceInterrupted(t *Task, intervals [][2]int64) *InterruptionStretch {
	return &InterruptionStretch{constraintBase: newConstraintBase("ResourceInterrupted_"+t.Name(), t), T: t, Intervals: intervals}
}

// NewResourcePeriodicallyInterrupted expands intervals repeating every
// period ticks and builds the same stretch/overlap contribution.
func NewResourcePeriodicallyInterrupted(t *Task, intervals [][2]int64, period, start, offset, end int64) *InterruptionStretch {
	var expanded [][2]int64
	for at := start; at+period <= end || at == start; at += period {
		for _, iv := range intervals {
			lo, hi := at+offset+iv[0], at+offset+iv[1]
			if lo >= end {
				continue
			}
			if hi > end {
				hi = end
			}
			expanded = append(expanded, [2]int64{lo, hi})
		}
		if period <= 0 {
			break
		}
	}
	return &InterruptionStretch{constraintBase: newConstraintBase("ResourcePeriodicallyInterrupted_"+t.Name(), t), T: t, Intervals: expanded}
}

// reify asserts the task's Overlap variable (DurationInterruptible tasks) or
// stretches Duration (every other variant) by the total overlap between
// [T.start, T.end] and Intervals, per SPEC_FULL.md §4.5a.
func (c *InterruptionStretch) reify(ctx *EncoderCtx) z3.AST {
	terms := make([]z3.AST, 0, len(c.Intervals))
	for _, iv := range c.Intervals {
		terms = append(terms, overlap(ctx, c.T, iv[0], iv[1]))
	}
	total := ctx.Sum(terms...)
	if c.T.policy == DurationInterruptible {
		return c.reifyBody(ctx, z3.Eq(c.T.Overlap, total))
	}
	// Non-interruptible variant (typically VariableDurationTask): the task
	// still gets its full net working time, so duration must cover both its
	// own minimum work and whatever was lost to interrupting windows.
	return c.reifyBody(ctx, z3.Ge(c.T.Duration, z3.Add(ctx.IntVal(c.T.minDuration), total)))
}

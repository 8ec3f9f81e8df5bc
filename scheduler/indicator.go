package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// Indicator is the integer-valued observed quantity of spec.md §3.4/§4.7: an
// expression over task/resource/buffer variables, with optional bounds that
// tighten search.
type Indicator struct {
	namedUIDObject
	expr       Expression
	lowerBound *int64
	upperBound *int64

	Value z3.AST // populated by contribute
}

// NewIndicator builds a custom indicator from a raw expression.
func NewIndicator(r *registry, name string, expr Expression, lowerBound, upperBound *int64) (*Indicator, error) {
	if err := r.register(kindIndicator, name); err != nil {
		return nil, err
	}
	return &Indicator{namedUIDObject: newNamedUIDObject(name), expr: expr, lowerBound: lowerBound, upperBound: upperBound}, nil
}

// contribute implements spec.md §4.7: I_val = expression, plus bounds.
func (ind *Indicator) contribute(ctx *EncoderCtx) error {
	ind.Value = ctx.Int(ind.varName(kindIndicator, "value"))
	ctx.Assert(ind.varName(kindIndicator, "value_def"), z3.Eq(ind.Value, ind.expr(ctx)))
	if ind.lowerBound != nil {
		ctx.Assert(ind.varName(kindIndicator, "lb"), z3.Ge(ind.Value, ctx.IntVal(*ind.lowerBound)))
	}
	if ind.upperBound != nil {
		ctx.Assert(ind.varName(kindIndicator, "ub"), z3.Le(ind.Value, ctx.IntVal(*ind.upperBound)))
	}
	return nil
}

// maxOfEnds builds max(T.end) masked by Scheduled over a task list, per
// spec.md §9's resolved open question: Makespan (and every other "max over
// tasks" indicator) does not count unscheduled optional tasks — masked
// entries fall back to 0 rather than participating in the max.
func maxOfEnds(ctx *EncoderCtx, tasks []*Task) z3.AST {
	if len(tasks) == 0 {
		return ctx.IntVal(0)
	}
	m := z3.Ite(tasks[0].Scheduled, tasks[0].End, ctx.IntVal(0))
	for _, t := range tasks[1:] {
		v := z3.Ite(t.Scheduled, t.End, ctx.IntVal(0))
		m = z3.Ite(z3.Ge(v, m), v, m)
	}
	return m
}

// MakespanExpression builds spec.md §4.7's Makespan indicator body: the
// maximum T.end over tasks, masking unscheduled optional tasks to 0.
func MakespanExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST { return maxOfEnds(ctx, tasks) }
}

// FlowtimeExpression builds Σ T.end, masked by Scheduled.
func FlowtimeExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasks))
		for _, t := range tasks {
			terms = append(terms, z3.Ite(t.Scheduled, t.End, ctx.IntVal(0)))
		}
		return ctx.Sum(terms...)
	}
}

// FlowtimeSingleResourceExpression builds the sum of ends of tasks using R
// within [a, b], restricted to the given subset of tasks that actually claim
// R (the caller supplies that subset; it is not inferred from the tasks'
// resource requirements).
func FlowtimeSingleResourceExpression(tasksOnResource []*Task, a, b int64) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasksOnResource))
		for _, t := range tasksOnResource {
			inWindow := z3.And(z3.Ge(t.Start, ctx.IntVal(a)), z3.Le(t.End, ctx.IntVal(b)))
			terms = append(terms, z3.Ite(z3.And(t.Scheduled, inWindow), t.End, ctx.IntVal(0)))
		}
		return ctx.Sum(terms...)
	}
}

// TardinessExpression builds Σ max(0, T.end - due_date) over tasks that have
// a due date.
func TardinessExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasks))
		for _, t := range tasks {
			if t.DueDate == nil {
				continue
			}
			late := z3.Sub(t.End, ctx.IntVal(*t.DueDate))
			terms = append(terms, z3.Ite(t.Scheduled, z3.Ite(z3.Ge(late, ctx.IntVal(0)), late, ctx.IntVal(0)), ctx.IntVal(0)))
		}
		return ctx.Sum(terms...)
	}
}

// EarlinessExpression builds Σ max(0, due_date - T.end).
func EarlinessExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasks))
		for _, t := range tasks {
			if t.DueDate == nil {
				continue
			}
			early := z3.Sub(ctx.IntVal(*t.DueDate), t.End)
			terms = append(terms, z3.Ite(t.Scheduled, z3.Ite(z3.Ge(early, ctx.IntVal(0)), early, ctx.IntVal(0)), ctx.IntVal(0)))
		}
		return ctx.Sum(terms...)
	}
}

// MaximumLatenessExpression builds max over T of (T.end - due_date).
func MaximumLatenessExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		var withDue []*Task
		for _, t := range tasks {
			if t.DueDate != nil {
				withDue = append(withDue, t)
			}
		}
		if len(withDue) == 0 {
			return ctx.IntVal(0)
		}
		m := z3.Sub(withDue[0].End, ctx.IntVal(*withDue[0].DueDate))
		for _, t := range withDue[1:] {
			v := z3.Sub(t.End, ctx.IntVal(*t.DueDate))
			m = z3.Ite(z3.Ge(v, m), v, m)
		}
		return m
	}
}

// NumberOfTardyTasksExpression builds Σ [T.end > due_date].
func NumberOfTardyTasksExpression(tasks []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasks))
		for _, t := range tasks {
			if t.DueDate == nil {
				continue
			}
			tardy := z3.And(t.Scheduled, z3.Gt(t.End, ctx.IntVal(*t.DueDate)))
			terms = append(terms, ctx.BoolToInt(tardy))
		}
		return ctx.Sum(terms...)
	}
}

// ResourceUtilizationExpression builds (100 * Σ busy_periods) / H,
// integer-rounded, over the tasks known to use R.
func ResourceUtilizationExpression(tasksOnResource []*Task) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasksOnResource))
		for _, t := range tasksOnResource {
			terms = append(terms, z3.Ite(t.Scheduled, t.Duration, ctx.IntVal(0)))
		}
		busy := ctx.Sum(terms...)
		return z3.Div(z3.Mul(ctx.IntVal(100), busy), ctx.Horizon())
	}
}

// NumberTasksAssignedExpression builds Σ assigned(T,R) over the tasks known
// to use R: for concrete assignments this is just Scheduled; for a
// SelectWorkers-mediated assignment it is Scheduled && picked_w.
func NumberTasksAssignedExpression(tasksOnResource []*Task, pickedFlags map[*Task]z3.AST) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		terms := make([]z3.AST, 0, len(tasksOnResource))
		for _, t := range tasksOnResource {
			guard := t.Scheduled
			if p, ok := pickedFlags[t]; ok {
				guard = z3.And(guard, p)
			}
			terms = append(terms, ctx.BoolToInt(guard))
		}
		return ctx.Sum(terms...)
	}
}

// ResourceCostExpression builds Σ integral of each resource's cost function
// over its busy sub-intervals (spec.md §4.7/§4.8). windows lists one
// (Resource, A, B) entry per window a resource was busy — callers derive
// this from their own task/resource wiring.
type CostWindow struct {
	Resource *Worker
	A, B     int64
}

func ResourceCostExpression(windows []CostWindow) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		var total int64
		for _, w := range windows {
			if w.Resource.Cost == nil {
				continue
			}
			v, err := w.Resource.Cost.Integral(w.A, w.B)
			if err != nil {
				continue
			}
			total += v
		}
		return ctx.IntVal(total)
	}
}

// MaxBufferLevelExpression / MinBufferLevelExpression build max/min over a
// buffer's sampled breakpoints (spec.md §4.7). Buffer.contribute must have
// already run so Buffer.Timeline is populated.
func MaxBufferLevelExpression(b *Buffer) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		if len(b.Timeline) == 0 {
			return ctx.IntVal(0)
		}
		m := b.Timeline[0]
		for _, lvl := range b.Timeline[1:] {
			m = z3.Ite(z3.Ge(lvl, m), lvl, m)
		}
		return m
	}
}

func MinBufferLevelExpression(b *Buffer) Expression {
	return func(ctx *EncoderCtx) z3.AST {
		if len(b.Timeline) == 0 {
			return ctx.IntVal(0)
		}
		m := b.Timeline[0]
		for _, lvl := range b.Timeline[1:] {
			m = z3.Ite(z3.Le(lvl, m), lvl, m)
		}
		return m
	}
}

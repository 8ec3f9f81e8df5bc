package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// BoundKind selects strict vs. lax comparison for the handful of atomic
// constraints that offer both (spec.md §4.4).
type BoundKind int

const (
	Strict BoundKind = iota
	Lax
)

// PrecedenceKind selects the comparison TaskPrecedence applies between
// A.end+offset and B.start (spec.md §4.4).
type PrecedenceKind int

const (
	PrecedenceLax PrecedenceKind = iota
	PrecedenceStrict
	PrecedenceTight
)

// CardinalityKind is shared by every atomic constraint whose right-hand side
// is compared against a count with =, >=, or <= (ScheduleNTasksInTimeIntervals,
// ForceScheduleNOptionalTasks).
type CardinalityKind int

const (
	CardinalityExact CardinalityKind = iota
	CardinalityMin
	CardinalityMax
)

func cardinalityTerm(count, n z3.AST, kind CardinalityKind) z3.AST {
	switch kind {
	case CardinalityMin:
		return z3.Ge(count, n)
	case CardinalityMax:
		return z3.Le(count, n)
	default:
		return z3.Eq(count, n)
	}
}

// TaskStartAt pins T.start = v.
type TaskStartAt struct {
	constraintBase
	T *Task
	V int64
}

func NewTaskStartAt(t *Task, v int64, optional bool) *TaskStartAt {
	c := &TaskStartAt{constraintBase: newConstraintBase("TaskStartAt_"+t.Name(), t), T: t}
	c.Optional = optional
	c.V = v
	return c
}

func (c *TaskStartAt) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Eq(c.T.Start, ctx.IntVal(c.V)))
}

// TaskEndAt pins T.end = v.
type TaskEndAt struct {
	constraintBase
	T *Task
	V int64
}

func NewTaskEndAt(t *Task, v int64, optional bool) *TaskEndAt {
	c := &TaskEndAt{constraintBase: newConstraintBase("TaskEndAt_"+t.Name(), t), T: t}
	c.Optional = optional
	c.V = v
	return c
}

func (c *TaskEndAt) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Eq(c.T.End, ctx.IntVal(c.V)))
}

// TaskStartAfter requires T.start > v (strict) or T.start >= v (lax).
type TaskStartAfter struct {
	constraintBase
	T    *Task
	V    int64
	Kind BoundKind
}

func NewTaskStartAfter(t *Task, v int64, kind BoundKind, optional bool) *TaskStartAfter {
	c := &TaskStartAfter{constraintBase: newConstraintBase("TaskStartAfter_"+t.Name(), t), T: t, V: v, Kind: kind}
	c.Optional = optional
	return c
}

func (c *TaskStartAfter) reify(ctx *EncoderCtx) z3.AST {
	v := ctx.IntVal(c.V)
	body := z3.Ge(c.T.Start, v)
	if c.Kind == Strict {
		body = z3.Gt(c.T.Start, v)
	}
	return c.reifyBody(ctx, body)
}

// TaskEndBefore requires T.end < v (strict) or T.end <= v (lax).
type TaskEndBefore struct {
	constraintBase
	T    *Task
	V    int64
	Kind BoundKind
}

func NewTaskEndBefore(t *Task, v int64, kind BoundKind, optional bool) *TaskEndBefore {
	c := &TaskEndBefore{constraintBase: newConstraintBase("TaskEndBefore_"+t.Name(), t), T: t, V: v, Kind: kind}
	c.Optional = optional
	return c
}

func (c *TaskEndBefore) reify(ctx *EncoderCtx) z3.AST {
	v := ctx.IntVal(c.V)
	body := z3.Le(c.T.End, v)
	if c.Kind == Strict {
		body = z3.Lt(c.T.End, v)
	}
	return c.reifyBody(ctx, body)
}

// TaskPrecedence requires A.end + offset <=/</= B.start depending on Kind.
type TaskPrecedence struct {
	constraintBase
	A, B   *Task
	Offset int64
	Kind   PrecedenceKind
}

func NewTaskPrecedence(a, b *Task, kind PrecedenceKind, offset int64, optional bool) *TaskPrecedence {
	c := &TaskPrecedence{constraintBase: newConstraintBase("TaskPrecedence_"+a.Name()+"_"+b.Name(), a, b), A: a, B: b, Offset: offset, Kind: kind}
	c.Optional = optional
	return c
}

func (c *TaskPrecedence) reify(ctx *EncoderCtx) z3.AST {
	lhs := z3.Add(c.A.End, ctx.IntVal(c.Offset))
	var body z3.AST
	switch c.Kind {
	case PrecedenceStrict:
		body = z3.Lt(lhs, c.B.Start)
	case PrecedenceTight:
		body = z3.Eq(lhs, c.B.Start)
	default:
		body = z3.Le(lhs, c.B.Start)
	}
	return c.reifyBody(ctx, body)
}

// TasksStartSynced requires A.start = B.start.
type TasksStartSynced struct {
	constraintBase
	A, B *Task
}

func NewTasksStartSynced(a, b *Task, optional bool) *TasksStartSynced {
	c := &TasksStartSynced{constraintBase: newConstraintBase("TasksStartSynced_"+a.Name()+"_"+b.Name(), a, b), A: a, B: b}
	c.Optional = optional
	return c
}

func (c *TasksStartSynced) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Eq(c.A.Start, c.B.Start))
}

// TasksEndSynced requires A.end = B.end.
type TasksEndSynced struct {
	constraintBase
	A, B *Task
}

func NewTasksEndSynced(a, b *Task, optional bool) *TasksEndSynced {
	c := &TasksEndSynced{constraintBase: newConstraintBase("TasksEndSynced_"+a.Name()+"_"+b.Name(), a, b), A: a, B: b}
	c.Optional = optional
	return c
}

func (c *TasksEndSynced) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Eq(c.A.End, c.B.End))
}

// TasksDontOverlap requires (A.end <= B.start) || (B.end <= A.start).
type TasksDontOverlap struct {
	constraintBase
	A, B *Task
}

func NewTasksDontOverlap(a, b *Task, optional bool) *TasksDontOverlap {
	c := &TasksDontOverlap{constraintBase: newConstraintBase("TasksDontOverlap_"+a.Name()+"_"+b.Name(), a, b), A: a, B: b}
	c.Optional = optional
	return c
}

func (c *TasksDontOverlap) reify(ctx *EncoderCtx) z3.AST {
	body := z3.Or(z3.Le(c.A.End, c.B.Start), z3.Le(c.B.End, c.A.Start))
	return c.reifyBody(ctx, body)
}

// TasksContiguous requires pairwise Ti.end = T(i+1).start over list, in the
// given order.
type TasksContiguous struct {
	constraintBase
	List []*Task
}

func NewTasksContiguous(list []*Task, optional bool) *TasksContiguous {
	c := &TasksContiguous{constraintBase: newConstraintBase("TasksContiguous", list...), List: list}
	c.Optional = optional
	return c
}

func (c *TasksContiguous) reify(ctx *EncoderCtx) z3.AST {
	if len(c.List) < 2 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	parts := make([]z3.AST, 0, len(c.List)-1)
	for i := 0; i+1 < len(c.List); i++ {
		parts = append(parts, z3.Eq(c.List[i].End, c.List[i+1].Start))
	}
	return c.reifyBody(ctx, z3.And(parts...))
}

// OrderedTaskGroup asserts pairwise precedence over list, in the given order.
type OrderedTaskGroup struct {
	constraintBase
	List []*Task
	Kind PrecedenceKind
}

func NewOrderedTaskGroup(list []*Task, kind PrecedenceKind, optional bool) *OrderedTaskGroup {
	c := &OrderedTaskGroup{constraintBase: newConstraintBase("OrderedTaskGroup", list...), List: list, Kind: kind}
	c.Optional = optional
	return c
}

func (c *OrderedTaskGroup) reify(ctx *EncoderCtx) z3.AST {
	if len(c.List) < 2 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	parts := make([]z3.AST, 0, len(c.List)-1)
	for i := 0; i+1 < len(c.List); i++ {
		lhs := c.List[i].End
		var term z3.AST
		switch c.Kind {
		case PrecedenceStrict:
			term = z3.Lt(lhs, c.List[i+1].Start)
		case PrecedenceTight:
			term = z3.Eq(lhs, c.List[i+1].Start)
		default:
			term = z3.Le(lhs, c.List[i+1].Start)
		}
		parts = append(parts, term)
	}
	return c.reifyBody(ctx, z3.And(parts...))
}

// UnorderedTaskGroup requires every task in List to fall within
// [groupStart, groupEnd], itself clamped to [windowStart, windowEnd].
type UnorderedTaskGroup struct {
	constraintBase
	List                   []*Task
	WindowStart, WindowEnd int64
}

func NewUnorderedTaskGroup(list []*Task, windowStart, windowEnd int64, optional bool) *UnorderedTaskGroup {
	c := &UnorderedTaskGroup{constraintBase: newConstraintBase("UnorderedTaskGroup", list...), List: list, WindowStart: windowStart, WindowEnd: windowEnd}
	c.Optional = optional
	return c
}

func (c *UnorderedTaskGroup) reify(ctx *EncoderCtx) z3.AST {
	ws, we := ctx.IntVal(c.WindowStart), ctx.IntVal(c.WindowEnd)
	parts := make([]z3.AST, 0, 2*len(c.List))
	for _, t := range c.List {
		parts = append(parts, z3.Ge(t.Start, ws), z3.Le(t.End, we))
	}
	if len(parts) == 0 {
		return c.reifyBody(ctx, ctx.BoolVal(true))
	}
	return c.reifyBody(ctx, z3.And(parts...))
}

// ScheduleNTasksInTimeIntervals requires the count of tasks in List whose
// interval falls inside any of Intervals to compare against N per Kind.
type ScheduleNTasksInTimeIntervals struct {
	constraintBase
	List      []*Task
	N         int64
	Intervals [][2]int64
	Kind      CardinalityKind
}

func NewScheduleNTasksInTimeIntervals(list []*Task, n int64, intervals [][2]int64, kind CardinalityKind, optional bool) *ScheduleNTasksInTimeIntervals {
	c := &ScheduleNTasksInTimeIntervals{constraintBase: newConstraintBase("ScheduleNTasksInTimeIntervals", list...), List: list, N: n, Intervals: intervals, Kind: kind}
	c.Optional = optional
	return c
}

func (c *ScheduleNTasksInTimeIntervals) reify(ctx *EncoderCtx) z3.AST {
	terms := make([]z3.AST, 0, len(c.List))
	for _, t := range c.List {
		inside := make([]z3.AST, 0, len(c.Intervals))
		for _, iv := range c.Intervals {
			inside = append(inside, z3.And(z3.Ge(t.Start, ctx.IntVal(iv[0])), z3.Le(t.End, ctx.IntVal(iv[1]))))
		}
		flag := ctx.BoolVal(false)
		if len(inside) > 0 {
			flag = z3.Or(inside...)
		}
		terms = append(terms, ctx.BoolToInt(z3.And(flag, t.Scheduled)))
	}
	count := ctx.Sum(terms...)
	return c.reifyBody(ctx, cardinalityTerm(count, ctx.IntVal(c.N), c.Kind))
}

// ForceScheduleNOptionalTasks requires Σ T.scheduled to compare against N per
// Kind.
type ForceScheduleNOptionalTasks struct {
	constraintBase
	List []*Task
	N    int64
	Kind CardinalityKind
}

func NewForceScheduleNOptionalTasks(list []*Task, n int64, kind CardinalityKind) *ForceScheduleNOptionalTasks {
	return &ForceScheduleNOptionalTasks{constraintBase: newConstraintBase("ForceScheduleNOptionalTasks"), List: list, N: n, Kind: kind}
}

func (c *ForceScheduleNOptionalTasks) reify(ctx *EncoderCtx) z3.AST {
	terms := make([]z3.AST, 0, len(c.List))
	for _, t := range c.List {
		terms = append(terms, ctx.BoolToInt(t.Scheduled))
	}
	count := ctx.Sum(terms...)
	return c.reifyBody(ctx, cardinalityTerm(count, ctx.IntVal(c.N), c.Kind))
}

// OptionalTasksDependency requires A.scheduled -> B.scheduled.
type OptionalTasksDependency struct {
	constraintBase
	A, B *Task
}

func NewOptionalTasksDependency(a, b *Task) *OptionalTasksDependency {
	return &OptionalTasksDependency{constraintBase: newConstraintBase("OptionalTasksDependency_"+a.Name()+"_"+b.Name()), A: a, B: b}
}

func (c *OptionalTasksDependency) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Implies(c.A.Scheduled, c.B.Scheduled))
}

// OptionalTaskConditionSchedule requires Cond -> T.scheduled.
type OptionalTaskConditionSchedule struct {
	constraintBase
	T    *Task
	Cond Expression
}

func NewOptionalTaskConditionSchedule(t *Task, cond Expression) *OptionalTaskConditionSchedule {
	return &OptionalTaskConditionSchedule{constraintBase: newConstraintBase("OptionalTaskConditionSchedule_" + t.Name()), T: t, Cond: cond}
}

func (c *OptionalTaskConditionSchedule) reify(ctx *EncoderCtx) z3.AST {
	return c.reifyBody(ctx, z3.Implies(c.Cond(ctx), c.T.Scheduled))
}

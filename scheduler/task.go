package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// DurationPolicy selects which of the Task variants from spec.md §3.1
// governs a task's duration constraint.
type DurationPolicy int

const (
	// DurationZero pins duration to 0 (ZeroDurationTask).
	DurationZero DurationPolicy = iota
	// DurationFixed pins duration to a constant (FixedDurationTask).
	DurationFixed
	// DurationInterruptible is a FixedDurationTask whose total overlap with
	// interrupting windows is tracked separately rather than stretching its
	// duration (recovered FixedDurationInterruptibleTask, SPEC_FULL.md §3).
	DurationInterruptible
	// DurationVariable bounds duration between min and max, or restricts it
	// to an explicit allowed set (VariableDurationTask).
	DurationVariable
)

// resourceRequirement is one entry in a Task's required-resource list: either
// a single concrete Worker, a group of concrete Workers all required
// simultaneously, or a SelectWorkers choice node (spec.md §3.1).
type resourceRequirement struct {
	workers []*Worker
	select_ *SelectWorkers
	dynamic bool

	// The guard under which this requirement's workers participate in
	// cross-task constraints is not stored here: Problem.claimsByResource
	// computes it for each resourceClaim it builds from the requirement.
}

// Task is the time-interval entity of spec.md §3.1. All four variants named
// in spec.md and SPEC_FULL.md §3 share this one struct; DurationPolicy and
// the Min/Max/Allowed/Fixed fields select which duration constraint
// contribute emits.
type Task struct {
	namedUIDObject

	policy           DurationPolicy
	fixedDuration    int64
	minDuration      int64
	maxDuration      int64
	allowedDurations []int64

	Optional          bool
	ReleaseDate       *int64
	DueDate           *int64
	DueDateIsDeadline bool
	Priority          int64
	WorkAmount        int64

	requirements []*resourceRequirement

	// Decision variables, populated by contribute.
	Start     z3.AST
	End       z3.AST
	Duration  z3.AST
	Scheduled z3.AST // BoolVal(true) when the task is mandatory
	Overlap   z3.AST // only set for DurationInterruptible tasks

	// joinVars holds, per dynamic worker name, the T.join_w integer variable
	// from spec.md §4.3's dynamic-assignment contract.
	joinVars map[string]z3.AST
}

func newTask(r *registry, name string) (*Task, error) {
	if err := r.register(kindTask, name); err != nil {
		return nil, err
	}
	return &Task{namedUIDObject: newNamedUIDObject(name), Priority: 0}, nil
}

// NewZeroDurationTask builds a task pinned to zero duration.
func NewZeroDurationTask(r *registry, name string) (*Task, error) {
	t, err := newTask(r, name)
	if err != nil {
		return nil, err
	}
	t.policy = DurationZero
	return t, nil
}

// NewFixedDurationTask builds a task whose duration is the given constant.
func NewFixedDurationTask(r *registry, name string, duration int64) (*Task, error) {
	if duration < 0 {
		return nil, newModelError("task %q: duration must be non-negative, got %d", name, duration)
	}
	t, err := newTask(r, name)
	if err != nil {
		return nil, err
	}
	t.policy = DurationFixed
	t.fixedDuration = duration
	return t, nil
}

// NewFixedDurationInterruptibleTask builds the SPEC_FULL.md §3 variant
// recovered from original_source/processscheduler/task.py: a fixed-duration
// task whose Overlap variable accumulates time lost to interrupting resource
// windows (see ResourceInterrupted / ResourcePeriodicallyInterrupted).
func NewFixedDurationInterruptibleTask(r *registry, name string, duration int64) (*Task, error) {
	t, err := NewFixedDurationTask(r, name, duration)
	if err != nil {
		return nil, err
	}
	t.policy = DurationInterruptible
	return t, nil
}

// NewVariableDurationTask builds a task whose duration is bounded between
// minDuration and maxDuration (inclusive). Pass allowedDurations to further
// restrict duration to an explicit discrete set; pass nil to skip that.
func NewVariableDurationTask(r *registry, name string, minDuration, maxDuration int64, allowedDurations []int64) (*Task, error) {
	if minDuration < 0 || maxDuration < minDuration {
		return nil, newModelError("task %q: invalid duration bounds [%d, %d]", name, minDuration, maxDuration)
	}
	t, err := newTask(r, name)
	if err != nil {
		return nil, err
	}
	t.policy = DurationVariable
	t.minDuration = minDuration
	t.maxDuration = maxDuration
	t.allowedDurations = allowedDurations
	return t, nil
}

// AddResource attaches a single mandatory (or dynamic) required worker.
func (t *Task) AddResource(w *Worker, dynamic bool) {
	t.requirements = append(t.requirements, &resourceRequirement{workers: []*Worker{w}, dynamic: dynamic})
}

// AddResources attaches a group of workers all required simultaneously.
func (t *Task) AddResources(workers []*Worker, dynamic bool) {
	t.requirements = append(t.requirements, &resourceRequirement{workers: workers, dynamic: dynamic})
}

// AddSelectWorkers attaches a SelectWorkers choice node as a required
// resource group.
func (t *Task) AddSelectWorkers(sw *SelectWorkers, dynamic bool) {
	t.requirements = append(t.requirements, &resourceRequirement{select_: sw, dynamic: dynamic})
}

// allWorkers returns every concrete worker this task might use, concrete
// groups expanded and SelectWorkers candidate pools included.
func (t *Task) allWorkers() []*Worker {
	var out []*Worker
	for _, req := range t.requirements {
		if req.select_ != nil {
			out = append(out, req.select_.Candidates...)
		} else {
			out = append(out, req.workers...)
		}
	}
	return out
}

// contribute implements spec.md §4.2: task encoding of the interval
// variables and their invariants.
func (t *Task) contribute(ctx *EncoderCtx) error {
	t.Start = ctx.Int(t.varName(kindTask, "start"))
	t.End = ctx.Int(t.varName(kindTask, "end"))
	t.Duration = ctx.Int(t.varName(kindTask, "duration"))

	if t.Optional {
		t.Scheduled = ctx.Bool(t.varName(kindTask, "scheduled"))
	} else {
		t.Scheduled = ctx.BoolVal(true)
	}

	// The interval invariants bind only when the task runs, so an unscheduled
	// optional task leaves Start and End free.
	ctx.Assert(t.varName(kindTask, "end_eq_start_plus_duration"), z3.Implies(t.Scheduled, z3.Eq(t.End, z3.Add(t.Start, t.Duration))))
	ctx.Assert(t.varName(kindTask, "start_nonneg"), z3.Implies(t.Scheduled, z3.Ge(t.Start, ctx.IntVal(0))))
	ctx.Assert(t.varName(kindTask, "end_le_horizon"), z3.Implies(t.Scheduled, z3.Le(t.End, ctx.Horizon())))

	if err := t.contributeDuration(ctx); err != nil {
		return err
	}

	if t.ReleaseDate != nil {
		ctx.Assert(t.varName(kindTask, "release_date"), z3.Implies(t.Scheduled, z3.Ge(t.Start, ctx.IntVal(*t.ReleaseDate))))
	}
	if t.DueDate != nil && t.DueDateIsDeadline {
		ctx.Assert(t.varName(kindTask, "due_deadline"), z3.Implies(t.Scheduled, z3.Le(t.End, ctx.IntVal(*t.DueDate))))
	}

	if t.policy == DurationInterruptible {
		t.Overlap = ctx.Int(t.varName(kindTask, "overlap"))
		ctx.Assert(t.varName(kindTask, "overlap_nonneg"), z3.Ge(t.Overlap, ctx.IntVal(0)))
	}

	t.joinVars = make(map[string]z3.AST)
	for _, req := range t.requirements {
		if !req.dynamic {
			continue
		}
		candidates := req.workers
		if req.select_ != nil {
			candidates = req.select_.Candidates
		}
		for _, w := range candidates {
			// spec.md §4.3: a dynamic worker's join_w must still be guarded
			// by scheduled on an optional task, so join_w is meaningless
			// (unconstrained) whenever the task never runs. The
			// Implies(Scheduled, ...) bound below makes that case benign
			// rather than invalid, so there is no EncodingError to raise
			// here: an unscheduled optional task simply leaves join_w free.
			join := ctx.Int(t.varName(kindTask, "join_"+w.Name()))
			t.joinVars[w.Name()] = join
			ctx.Assert(t.varName(kindTask, "join_bounds_"+w.Name()),
				z3.Implies(t.Scheduled, z3.And(z3.Ge(join, t.Start), z3.Le(join, t.End))))
		}
	}

	return nil
}

func (t *Task) contributeDuration(ctx *EncoderCtx) error {
	switch t.policy {
	case DurationZero:
		ctx.Assert(t.varName(kindTask, "duration_zero"), z3.Eq(t.Duration, ctx.IntVal(0)))
	case DurationFixed, DurationInterruptible:
		ctx.Assert(t.varName(kindTask, "duration_fixed"), z3.Eq(t.Duration, ctx.IntVal(t.fixedDuration)))
	case DurationVariable:
		ctx.Assert(t.varName(kindTask, "duration_min"), z3.Ge(t.Duration, ctx.IntVal(t.minDuration)))
		ctx.Assert(t.varName(kindTask, "duration_max"), z3.Le(t.Duration, ctx.IntVal(t.maxDuration)))
		if len(t.allowedDurations) > 0 {
			alts := make([]z3.AST, 0, len(t.allowedDurations))
			for _, d := range t.allowedDurations {
				alts = append(alts, z3.Eq(t.Duration, ctx.IntVal(d)))
			}
			ctx.Assert(t.varName(kindTask, "duration_allowed"), z3.Or(alts...))
		}
	default:
		return newModelError("task %q: unknown duration policy", t.Name())
	}
	return nil
}

// durationContribution returns the integer term spec.md §4.3 calls
// duration_contribution_w(T): T.Duration for a non-dynamic worker, or
// T.End - T.join_w for a dynamic one.
func (t *Task) durationContribution(ctx *EncoderCtx, w *Worker, dynamic bool) z3.AST {
	if !dynamic {
		return t.Duration
	}
	join, ok := t.joinVars[w.Name()]
	if !ok {
		return t.Duration
	}
	return z3.Sub(t.End, join)
}

// unavailabilityTask is the internal, non-exported task variant from
// SPEC_FULL.md §3, recovered from original_source/processscheduler/task.py:
// the Start/End pair of a resource's unavailability window. No constraint in
// this package builds one; NewResourceUnavailable and
// NewResourcePeriodicallyUnavailable express unavailability as a WorkLoad
// allowing zero work over each interval. It never goes through the public
// registry since the user never names it directly.
type unavailabilityTask struct {
	Start, End z3.AST
}

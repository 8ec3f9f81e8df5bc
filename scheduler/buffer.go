package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// bufferEvent is one load or unload event against a Buffer, firing at a
// task's end (load) or start (unload) per spec.md §4.4.
type bufferEvent struct {
	task     *Task
	atEnd    bool // true: fires at task.End (load); false: at task.Start (unload)
	quantity int64
	sign     int64 // +1 load, -1 unload
}

func (ev bufferEvent) timeAST() z3.AST {
	if ev.atEnd {
		return ev.task.End
	}
	return ev.task.Start
}

// BufferKind selects whether concurrent events on a buffer are permitted.
type BufferKind int

const (
	// NonConcurrentBuffer requires load/unload events from different tasks
	// to be mutually exclusive in time.
	NonConcurrentBuffer BufferKind = iota
	// ConcurrentBuffer allows events to coincide; level is the integral of
	// all events regardless of overlap.
	ConcurrentBuffer
)

// Buffer is the integer-valued store of spec.md §3.3.
type Buffer struct {
	namedUIDObject

	Kind         BufferKind
	InitialLevel *int64
	FinalLevel   *int64
	LowerBound   *int64
	UpperBound   *int64

	events []bufferEvent

	// Timeline, populated by contribute, holds one integer "level" AST per
	// event, in the order events were added — the level *at and immediately
	// after* that event fires, however the solver ultimately orders events
	// in time (see contribute's comment on why this does not need a
	// presort).
	Timeline       []z3.AST
	BreakpointTime []z3.AST
}

// NewBuffer constructs a buffer. Bounds crossing (lower > upper) is a
// ModelError per spec.md §7.
func NewBuffer(r *registry, name string, kind BufferKind, initialLevel, finalLevel, lowerBound, upperBound *int64) (*Buffer, error) {
	if lowerBound != nil && upperBound != nil && *lowerBound > *upperBound {
		return nil, newModelError("buffer %q: lower_bound %d exceeds upper_bound %d", name, *lowerBound, *upperBound)
	}
	if err := r.register(kindBuffer, name); err != nil {
		return nil, err
	}
	return &Buffer{
		namedUIDObject: newNamedUIDObject(name),
		Kind:           kind,
		InitialLevel:   initialLevel,
		FinalLevel:     finalLevel,
		LowerBound:     lowerBound,
		UpperBound:     upperBound,
	}, nil
}

// TaskLoadBuffer records T.end, +q (spec.md §4.4).
func (b *Buffer) TaskLoadBuffer(t *Task, quantity int64) error {
	if quantity < 0 {
		return newModelError("buffer %q: load quantity must be non-negative, got %d", b.Name(), quantity)
	}
	b.events = append(b.events, bufferEvent{task: t, atEnd: true, quantity: quantity, sign: 1})
	return nil
}

// TaskUnloadBuffer records T.start, -q (spec.md §4.4).
func (b *Buffer) TaskUnloadBuffer(t *Task, quantity int64) error {
	if quantity < 0 {
		return newModelError("buffer %q: unload quantity must be non-negative, got %d", b.Name(), quantity)
	}
	b.events = append(b.events, bufferEvent{task: t, atEnd: false, quantity: quantity, sign: -1})
	return nil
}

// contribute implements spec.md §4.4's buffer linkage. Event times
// (task.Start/task.End) are themselves decision variables, so the encoder
// cannot presort events by name and still guarantee the breakpoint sequence
// matches the model's actual chronological order. Instead, the level at (and
// immediately after) event k is defined directly as the initial level plus
// the signed sum of every event whose time is <= event k's time — the
// closed-form equivalent of "sum of all deltas up to now" that a sorted
// sequential difference encoding would otherwise compute one step at a time.
// This is exact regardless of which relative order the solver ultimately
// picks for the events.
func (b *Buffer) contribute(ctx *EncoderCtx) error {
	n := len(b.events)
	b.Timeline = make([]z3.AST, n)
	b.BreakpointTime = make([]z3.AST, n)

	initial := ctx.IntVal(0)
	if b.InitialLevel != nil {
		initial = ctx.IntVal(*b.InitialLevel)
	}

	deltaOf := func(ev bufferEvent) z3.AST {
		return z3.Ite(ev.task.Scheduled, ctx.IntVal(ev.sign*ev.quantity), ctx.IntVal(0))
	}

	for k, evk := range b.events {
		tk := evk.timeAST()
		terms := []z3.AST{initial}
		for i, evi := range b.events {
			contributes := z3.Le(evi.timeAST(), tk)
			if i == k {
				// an event always counts toward its own post-event level.
				terms = append(terms, deltaOf(evi))
				continue
			}
			terms = append(terms, z3.Ite(contributes, deltaOf(evi), ctx.IntVal(0)))
		}
		level := ctx.Int(b.varName(kindBuffer, "level_"+itoa(uint32(k+1))))
		ctx.Assert(b.varName(kindBuffer, "level_def_"+itoa(uint32(k))), z3.Eq(level, ctx.Sum(terms...)))

		if b.LowerBound != nil {
			ctx.Assert(b.varName(kindBuffer, "lb_"+itoa(uint32(k+1))), z3.Ge(level, ctx.IntVal(*b.LowerBound)))
		}
		if b.UpperBound != nil {
			ctx.Assert(b.varName(kindBuffer, "ub_"+itoa(uint32(k+1))), z3.Le(level, ctx.IntVal(*b.UpperBound)))
		}

		b.Timeline[k] = level
		b.BreakpointTime[k] = tk
	}

	if b.LowerBound != nil {
		ctx.Assert(b.varName(kindBuffer, "lb_0"), z3.Ge(initial, ctx.IntVal(*b.LowerBound)))
	}
	if b.UpperBound != nil {
		ctx.Assert(b.varName(kindBuffer, "ub_0"), z3.Le(initial, ctx.IntVal(*b.UpperBound)))
	}

	if b.FinalLevel != nil {
		final := ctx.Sum(append([]z3.AST{initial}, deltasFor(b.events, deltaOf)...)...)
		ctx.Assert(b.varName(kindBuffer, "final_level"), z3.Eq(final, ctx.IntVal(*b.FinalLevel)))
	}

	if b.Kind == NonConcurrentBuffer {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if b.events[i].task == b.events[j].task {
					continue
				}
				label := b.varName(kindBuffer, "nonconcurrent_"+itoa(uint32(i))+"_"+itoa(uint32(j)))
				ctx.Assert(label, z3.Eq(b.events[i].timeAST(), b.events[j].timeAST()).Not())
			}
		}
	}

	return nil
}

func deltasFor(events []bufferEvent, deltaOf func(bufferEvent) z3.AST) []z3.AST {
	out := make([]z3.AST, len(events))
	for i, ev := range events {
		out[i] = deltaOf(ev)
	}
	return out
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// Worker is the atomic resource variant of spec.md §3.2: processes at most
// one task per time period (or, when Size > 1, up to Size concurrent tasks —
// a CumulativeWorker is just a Worker with Size > 1, rather than the
// virtual-slot decomposition spec.md §3.2 mentions as an alternative; §4.3's
// own encoding is stated directly in terms of an event-instant occupancy sum
// bounded by k, which is what Problem.encodeResourceSharing implements, so the
// virtual-slot indirection buys nothing and is dropped — documented as an
// Open Question resolution in DESIGN.md).
type Worker struct {
	namedUIDObject
	Size         int64
	Productivity int64
	Cost         Function
}

// NewWorker constructs a single-capacity Worker. productivity must be
// non-negative; it is the quantity of work_amount the worker contributes per
// time unit it is assigned to a task (spec.md §4.3).
func NewWorker(r *registry, name string, productivity int64, cost Function) (*Worker, error) {
	if productivity < 0 {
		return nil, newModelError("worker %q: productivity must be non-negative, got %d", name, productivity)
	}
	if err := r.register(kindResource, name); err != nil {
		return nil, err
	}
	return &Worker{namedUIDObject: newNamedUIDObject(name), Size: 1, Productivity: productivity, Cost: cost}, nil
}

// NewCumulativeWorker constructs a Worker that may host up to size concurrent
// tasks (spec.md §3.2's CumulativeWorker).
func NewCumulativeWorker(r *registry, name string, size int64, productivity int64, cost Function) (*Worker, error) {
	if size < 1 {
		return nil, newModelError("cumulative worker %q: size must be >= 1, got %d", name, size)
	}
	w, err := NewWorker(r, name, productivity, cost)
	if err != nil {
		return nil, err
	}
	w.Size = size
	return w, nil
}

// IsCumulative reports whether the worker can host more than one concurrent
// task.
func (w *Worker) IsCumulative() bool { return w.Size > 1 }

// SelectCardinality is the comparison kind a SelectWorkers node applies
// between the count of picked candidates and n (spec.md §3.2).
type SelectCardinality int

const (
	SelectExact SelectCardinality = iota
	SelectMin
	SelectMax
)

func (k SelectCardinality) String() string {
	switch k {
	case SelectExact:
		return "exact"
	case SelectMin:
		return "min"
	case SelectMax:
		return "max"
	default:
		return "unknown"
	}
}

// SelectWorkers is the choice node of spec.md §3.2: not a resource itself,
// but a combinatorial selection of n candidates out of a pool, each guarded
// by a fresh "picked" boolean. It is always owned by exactly one Task (the
// task whose requirement it encodes), since the picked_w booleans are
// meaningful only in the context of that task's assignment.
type SelectWorkers struct {
	Candidates []*Worker
	N          int64
	Kind       SelectCardinality

	// Picked holds, after contribute, one boolean AST per candidate name.
	Picked map[string]z3.AST
}

// NewSelectWorkers validates and constructs a selection node. n must respect
// the candidate pool size for exact/max kinds.
func NewSelectWorkers(candidates []*Worker, n int64, kind SelectCardinality) (*SelectWorkers, error) {
	if len(candidates) == 0 {
		return nil, newModelError("SelectWorkers: candidate list must not be empty")
	}
	if n < 0 {
		return nil, newModelError("SelectWorkers: n must be non-negative, got %d", n)
	}
	if (kind == SelectExact || kind == SelectMax) && n > int64(len(candidates)) {
		return nil, newModelError("SelectWorkers: n=%d exceeds candidate pool size %d", n, len(candidates))
	}
	return &SelectWorkers{Candidates: candidates, N: n, Kind: kind}, nil
}

// contribute introduces one picked_w boolean per candidate plus the
// cardinality assertion, guarded by the owning task's varName namespace so
// two different tasks selecting from overlapping pools don't collide.
func (sw *SelectWorkers) contribute(ctx *EncoderCtx, owner namedUIDObject) {
	sw.Picked = make(map[string]z3.AST, len(sw.Candidates))
	terms := make([]z3.AST, 0, len(sw.Candidates))
	for _, w := range sw.Candidates {
		name := owner.varName(kindTask, "picked_"+w.Name())
		p := ctx.Bool(name)
		sw.Picked[w.Name()] = p
		terms = append(terms, ctx.BoolToInt(p))
	}
	count := ctx.Sum(terms...)
	n := ctx.IntVal(sw.N)
	switch sw.Kind {
	case SelectExact:
		ctx.Assert(owner.varName(kindTask, "select_card"), z3.Eq(count, n))
	case SelectMin:
		ctx.Assert(owner.varName(kindTask, "select_card"), z3.Ge(count, n))
	case SelectMax:
		ctx.Assert(owner.varName(kindTask, "select_card"), z3.Le(count, n))
	}
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// TaskSolution is the per-task record of spec.md §6.
type TaskSolution struct {
	Start, End, Duration int64
	Scheduled            bool
	Assigned             []string
}

// BufferPoint is one (time, level) breakpoint of a buffer's level timeline.
type BufferPoint struct {
	Time  int64
	Level int64
}

// Solution is the immutable record of spec.md §3.6/§6: a fresh snapshot
// produced by the driver for each successful check(), never mutated once
// returned.
type Solution struct {
	Horizon    int64
	Tasks      map[string]TaskSolution
	Buffers    map[string][]BufferPoint
	Indicators map[string]int64
	Optimal    bool
}

func evalInt(m *z3.Model, a z3.AST) (int64, error) {
	v := m.Eval(a, true)
	if i, ok := v.AsInt64(); ok {
		return i, nil
	}
	return 0, newBackendFailure(nil, "could not evaluate integer term %s in model", a.String())
}

func evalBool(m *z3.Model, a z3.AST) (bool, error) {
	v := m.Eval(a, true)
	if b, ok := v.BoolValue(); ok {
		return b, nil
	}
	return false, newBackendFailure(nil, "could not evaluate boolean term %s in model", a.String())
}

// extractSolution reads back every task/buffer/indicator value from m,
// following spec.md §6's Solution contract. p.claims, the per-resource claim
// list problem.encode built, lets Assigned be populated from the
// SelectWorkers picked_w booleans as well as concrete assignments.
func extractSolution(ctx *EncoderCtx, m *z3.Model, p *Problem, optimal bool) (*Solution, error) {
	horizon, err := evalInt(m, ctx.horizon)
	if err != nil {
		return nil, err
	}

	claimsByTask := make(map[*Task][]resourceClaim)
	for _, cs := range p.claims {
		for _, c := range cs {
			claimsByTask[c.task] = append(claimsByTask[c.task], c)
		}
	}

	sol := &Solution{
		Horizon:    horizon,
		Tasks:      make(map[string]TaskSolution, len(p.Tasks)),
		Buffers:    make(map[string][]BufferPoint, len(p.Buffers)),
		Indicators: make(map[string]int64, len(p.Indicators)),
		Optimal:    optimal,
	}

	for _, t := range p.Tasks {
		scheduled, err := evalBool(m, t.Scheduled)
		if err != nil {
			return nil, err
		}
		ts := TaskSolution{Scheduled: scheduled}
		if scheduled {
			if ts.Start, err = evalInt(m, t.Start); err != nil {
				return nil, err
			}
			if ts.End, err = evalInt(m, t.End); err != nil {
				return nil, err
			}
			if ts.Duration, err = evalInt(m, t.Duration); err != nil {
				return nil, err
			}
			for _, c := range claimsByTask[t] {
				picked, err := evalBool(m, c.guard)
				if err != nil {
					return nil, err
				}
				if picked {
					ts.Assigned = append(ts.Assigned, c.worker.Name())
				}
			}
		}
		sol.Tasks[t.Name()] = ts
	}

	for _, b := range p.Buffers {
		points := make([]BufferPoint, 0, len(b.Timeline)+1)
		if b.InitialLevel != nil {
			points = append(points, BufferPoint{Time: 0, Level: *b.InitialLevel})
		}
		for i, lvl := range b.Timeline {
			t, err := evalInt(m, b.BreakpointTime[i])
			if err != nil {
				return nil, err
			}
			v, err := evalInt(m, lvl)
			if err != nil {
				return nil, err
			}
			points = append(points, BufferPoint{Time: t, Level: v})
		}
		sol.Buffers[b.Name()] = points
	}

	for _, ind := range p.Indicators {
		v, err := evalInt(m, ind.Value)
		if err != nil {
			return nil, err
		}
		sol.Indicators[ind.Name()] = v
	}

	return sol, nil
}

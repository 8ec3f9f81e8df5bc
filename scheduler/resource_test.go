//go:build cgo
// +build cgo

package scheduler

import "testing"

func TestWorkerNonOverlap(t *testing.T) {
	p := NewProblem("WorkerNonOverlap", nil)
	reg := p.Registry()

	w, err := NewWorker(reg, "M", 0, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	if err := p.AddResource(w); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	a, err := NewFixedDurationTask(reg, "A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask A: %v", err)
	}
	b, err := NewFixedDurationTask(reg, "B", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask B: %v", err)
	}
	a.AddResource(w, false)
	b.AddResource(w, false)
	if err := p.AddTask(a); err != nil {
		t.Fatalf("AddTask A: %v", err)
	}
	if err := p.AddTask(b); err != nil {
		t.Fatalf("AddTask B: %v", err)
	}

	sol := solveProblem(t, p)
	as, bs := sol.Tasks["A"], sol.Tasks["B"]
	if !(as.End <= bs.Start || bs.End <= as.Start) {
		t.Fatalf("A=[%d,%d] B=[%d,%d] overlap on a capacity-1 worker", as.Start, as.End, bs.Start, bs.End)
	}
}

func TestCumulativeWorkerCapacityBound(t *testing.T) {
	horizon := int64(10)
	p := NewProblem("CumulativeCapacity", &horizon)
	reg := p.Registry()

	m, err := NewCumulativeWorker(reg, "M", 2, 0, nil)
	if err != nil {
		t.Fatalf("NewCumulativeWorker: %v", err)
	}
	if err := p.AddResource(m); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	var tasks []*Task
	for i := 0; i < 3; i++ {
		name := []string{"T1", "T2", "T3"}[i]
		task, err := NewFixedDurationTask(reg, name, 5)
		if err != nil {
			t.Fatalf("NewFixedDurationTask %s: %v", name, err)
		}
		task.AddResource(m, false)
		tasks = append(tasks, task)
		if err := p.AddTask(task); err != nil {
			t.Fatalf("AddTask %s: %v", name, err)
		}
	}

	sol := solveProblem(t, p)

	// at every sampled instant, at most 2 of the 3 tasks may be running.
	for probe := int64(0); probe <= horizon; probe++ {
		count := 0
		for _, task := range tasks {
			ts := sol.Tasks[task.Name()]
			if ts.Start <= probe && probe < ts.End {
				count++
			}
		}
		if count > 2 {
			t.Fatalf("at time %d, %d of 3 tasks overlap on a size-2 cumulative worker", probe, count)
		}
	}
}

func TestSelectWorkersExactCardinality(t *testing.T) {
	p := NewProblem("SelectWorkers", nil)
	reg := p.Registry()

	var candidates []*Worker
	for _, name := range []string{"W1", "W2", "W3"} {
		w, err := NewWorker(reg, name, 0, nil)
		if err != nil {
			t.Fatalf("NewWorker %s: %v", name, err)
		}
		candidates = append(candidates, w)
		if err := p.AddResource(w); err != nil {
			t.Fatalf("AddResource %s: %v", name, err)
		}
	}

	task, err := NewFixedDurationTask(reg, "T", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	sw, err := NewSelectWorkers(candidates, 2, SelectExact)
	if err != nil {
		t.Fatalf("NewSelectWorkers: %v", err)
	}
	task.AddSelectWorkers(sw, false)
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	sol := solveProblem(t, p)
	if len(sol.Tasks["T"].Assigned) != 2 {
		t.Fatalf("assigned=%v want exactly 2 workers", sol.Tasks["T"].Assigned)
	}
}

//go:build cgo
// +build cgo

package scheduler

import "testing"

func TestOrCombinatorAllowsEitherDisjunct(t *testing.T) {
	p := NewProblem("OrCombinator", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := p.AddConstraint(Or(NewTaskStartAt(task, 0, false), NewTaskStartAt(task, 5, false))); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	sol := solveProblem(t, p)
	start := sol.Tasks["T"].Start
	if start != 0 && start != 5 {
		t.Fatalf("start=%d want 0 or 5", start)
	}
}

func TestNotCombinatorExcludesValue(t *testing.T) {
	horizon := int64(1)
	p := NewProblem("NotCombinator", &horizon)
	reg := p.Registry()

	task, err := NewZeroDurationTask(reg, "T")
	if err != nil {
		t.Fatalf("NewZeroDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := p.AddConstraint(NotConstraint(NewTaskStartAt(task, 0, false))); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	sol := solveProblem(t, p)
	if sol.Tasks["T"].Start == 0 {
		t.Fatalf("NotConstraint(TaskStartAt(T,0)) should forbid start=0")
	}
}

func TestXorCombinatorExactlyOne(t *testing.T) {
	p := NewProblem("XorCombinator", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := p.AddConstraint(XorConstraint(NewTaskStartAt(task, 0, false), NewTaskStartAt(task, 3, false))); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	sol := solveProblem(t, p)
	start := sol.Tasks["T"].Start
	if start != 0 && start != 3 {
		t.Fatalf("start=%d want 0 or 3", start)
	}
}

func TestExactObjectivePinsIndicator(t *testing.T) {
	p := NewProblem("ExactObjective", nil)
	reg := p.Registry()

	a, err := NewFixedDurationTask(reg, "A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask A: %v", err)
	}
	b, err := NewFixedDurationTask(reg, "B", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask B: %v", err)
	}
	if err := p.AddTask(a); err != nil {
		t.Fatalf("AddTask A: %v", err)
	}
	if err := p.AddTask(b); err != nil {
		t.Fatalf("AddTask B: %v", err)
	}
	if err := p.AddConstraint(NewTaskPrecedence(a, b, PrecedenceLax, 0, false)); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	makespan, err := NewIndicator(reg, "Makespan", MakespanExpression([]*Task{a, b}), nil, nil)
	if err != nil {
		t.Fatalf("NewIndicator: %v", err)
	}
	if err := p.AddIndicator(makespan); err != nil {
		t.Fatalf("AddIndicator: %v", err)
	}
	obj, err := NewExactObjective(reg, "PinMakespan", makespan, 9)
	if err != nil {
		t.Fatalf("NewExactObjective: %v", err)
	}
	if err := p.AddObjective(obj); err != nil {
		t.Fatalf("AddObjective: %v", err)
	}

	sol := solveProblem(t, p)
	if sol.Indicators["Makespan"] != 9 {
		t.Fatalf("makespan=%d want exactly 9", sol.Indicators["Makespan"])
	}
}

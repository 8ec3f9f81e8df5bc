//go:build cgo
// +build cgo

package scheduler

import (
	"context"
	"testing"
)

// solveProblem solves p with DefaultOptions and returns the Solution,
// failing the test on any solve error.
func solveProblem(t *testing.T, p *Problem) *Solution {
	t.Helper()
	s := NewSolver(p, DefaultOptions())
	sol, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return sol
}

func TestFixedDurationTaskIntervalConsistency(t *testing.T) {
	p := NewProblem("IntervalConsistency", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 5)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	sol := solveProblem(t, p)
	ts := sol.Tasks["T"]
	if ts.End-ts.Start != ts.Duration {
		t.Fatalf("end-start=%d want duration=%d", ts.End-ts.Start, ts.Duration)
	}
	if ts.Duration != 5 {
		t.Fatalf("duration=%d want 5", ts.Duration)
	}
	if ts.Start < 0 {
		t.Fatalf("start=%d want >= 0", ts.Start)
	}
}

func TestVariableDurationTaskBounds(t *testing.T) {
	p := NewProblem("VariableDuration", nil)
	reg := p.Registry()

	task, err := NewVariableDurationTask(reg, "T", 2, 6, []int64{2, 4, 6})
	if err != nil {
		t.Fatalf("NewVariableDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	sol := solveProblem(t, p)
	ts := sol.Tasks["T"]
	if ts.Duration != 2 && ts.Duration != 4 && ts.Duration != 6 {
		t.Fatalf("duration=%d not in allowed set {2,4,6}", ts.Duration)
	}
}

func TestTaskPrecedenceLax(t *testing.T) {
	p := NewProblem("Precedence", nil)
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

	sol := solveProblem(t, p)
	if sol.Tasks["A"].End > sol.Tasks["B"].Start {
		t.Fatalf("A.end=%d must be <= B.start=%d", sol.Tasks["A"].End, sol.Tasks["B"].Start)
	}
}

func TestOptionalTaskUnscheduledWhenInfeasible(t *testing.T) {
	horizon := int64(2)
	p := NewProblem("OptionalInfeasible", &horizon)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 5)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	task.Optional = true
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	sol := solveProblem(t, p)
	if sol.Tasks["T"].Scheduled {
		t.Fatalf("task with duration 5 on horizon 2 should not be scheduled")
	}
}

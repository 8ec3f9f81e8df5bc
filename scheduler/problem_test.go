//go:build cgo
// +build cgo

package scheduler

import (
	"context"
	"testing"
)

func TestWorkAmountRequiresProductiveWorker(t *testing.T) {
	p := NewProblem("WorkAmountNoProductiveWorker", nil)
	reg := p.Registry()

	w, err := NewWorker(reg, "M", 0, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	if err := p.AddResource(w); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	task, err := NewFixedDurationTask(reg, "T", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	task.WorkAmount = 10
	task.AddResource(w, false)
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	_, err = NewSolver(p, DefaultOptions()).Solve(context.Background())
	if err == nil {
		t.Fatalf("expected a ModelError: productivity 0 cannot satisfy work_amount")
	}
	serr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error %v is not a *Error", err)
	}
	if serr.Kind != ModelError {
		t.Fatalf("error kind=%v want ModelError", serr.Kind)
	}
}

func TestWorkAmountSatisfiedByProductiveWorker(t *testing.T) {
	p := NewProblem("WorkAmountSatisfied", nil)
	reg := p.Registry()

	w, err := NewWorker(reg, "M", 4, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	if err := p.AddResource(w); err != nil {
		t.Fatalf("AddResource: %v", err)
	}

	task, err := NewFixedDurationTask(reg, "T", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	task.WorkAmount = 10
	task.AddResource(w, false)
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	sol := solveProblem(t, p)
	if !sol.Tasks["T"].Scheduled {
		t.Fatalf("mandatory task should be scheduled")
	}
}

func TestProblemImmutableOnceSolveStarted(t *testing.T) {
	p := NewProblem("Immutable", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if _, err := NewSolver(p, DefaultOptions()).Solve(context.Background()); err != nil {
		t.Fatalf("solve: %v", err)
	}

	other, err := NewFixedDurationTask(reg, "Other", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(other); err == nil {
		t.Fatalf("expected AddTask to fail once solving has started")
	}
}

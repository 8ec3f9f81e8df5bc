//go:build cgo
// +build cgo

package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/tpaviot/go-scheduler/z3"
)

func TestSolveMinimizeMakespan(t *testing.T) {
	p := NewProblem("HelloWorld", nil)
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
	obj, err := NewObjective(reg, "MinMakespan", makespan, Minimize, 1)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}
	if err := p.AddObjective(obj); err != nil {
		t.Fatalf("AddObjective: %v", err)
	}

	sol := solveProblem(t, p)
	if !sol.Optimal {
		t.Fatalf("expected a proven-optimal solution")
	}
	if sol.Indicators["Makespan"] != 5 {
		t.Fatalf("makespan=%d want 5", sol.Indicators["Makespan"])
	}
}

func TestSolveNativeOptimizerMatchesIncremental(t *testing.T) {
	build := func() (*Problem, *Task, *Task) {
		p := NewProblem("NativeVsIncremental", nil)
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
		obj, err := NewObjective(reg, "MinMakespan", makespan, Minimize, 1)
		if err != nil {
			t.Fatalf("NewObjective: %v", err)
		}
		if err := p.AddObjective(obj); err != nil {
			t.Fatalf("AddObjective: %v", err)
		}
		return p, a, b
	}

	incOpts := DefaultOptions()
	pInc, _, _ := build()
	solInc, err := NewSolver(pInc, incOpts).Solve(context.Background())
	if err != nil {
		t.Fatalf("incremental solve: %v", err)
	}

	nativeOpts := DefaultOptions()
	nativeOpts.Optimizer = OptimizerNative
	pNative, _, _ := build()
	solNative, err := NewSolver(pNative, nativeOpts).Solve(context.Background())
	if err != nil {
		t.Fatalf("native solve: %v", err)
	}

	if solInc.Indicators["Makespan"] != solNative.Indicators["Makespan"] {
		t.Fatalf("incremental makespan=%d native makespan=%d should match",
			solInc.Indicators["Makespan"], solNative.Indicators["Makespan"])
	}
}

func TestFindAnotherSolutionNeverRepeatsX0(t *testing.T) {
	horizon := int64(10)
	p := NewProblem("FindAnother", &horizon)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	s := NewSolver(p, DefaultOptions())
	first, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("initial solve: %v", err)
	}
	x0 := first.Tasks["T"].Start

	second, err := s.FindAnotherSolution(task.Start, x0)
	if err != nil {
		t.Fatalf("FindAnotherSolution: %v", err)
	}
	if second.Tasks["T"].Start == x0 {
		t.Fatalf("FindAnotherSolution returned the same start %d as x0", x0)
	}
}

func TestUnsatisfiableCarriesDebugCore(t *testing.T) {
	p := NewProblem("Infeasible", nil)
	reg := p.Registry()

	a, err := NewFixedDurationTask(reg, "A", 5)
	if err != nil {
		t.Fatalf("NewFixedDurationTask A: %v", err)
	}
	b, err := NewFixedDurationTask(reg, "B", 5)
	if err != nil {
		t.Fatalf("NewFixedDurationTask B: %v", err)
	}
	if err := p.AddTask(a); err != nil {
		t.Fatalf("AddTask A: %v", err)
	}
	if err := p.AddTask(b); err != nil {
		t.Fatalf("AddTask B: %v", err)
	}
	// A before B and B before A: mutually contradictory.
	if err := p.AddConstraint(NewTaskPrecedence(a, b, PrecedenceLax, 0, false)); err != nil {
		t.Fatalf("AddConstraint a-before-b: %v", err)
	}
	if err := p.AddConstraint(NewTaskPrecedence(b, a, PrecedenceLax, 0, false)); err != nil {
		t.Fatalf("AddConstraint b-before-a: %v", err)
	}
	if err := p.AddConstraint(NewTaskStartAt(a, 0, false)); err != nil {
		t.Fatalf("AddConstraint start-at: %v", err)
	}
	if err := p.AddConstraint(NewTaskStartAt(b, 0, false)); err != nil {
		t.Fatalf("AddConstraint start-at: %v", err)
	}

	opts := DefaultOptions()
	opts.Debug = true
	s := NewSolver(p, opts)
	_, err = s.Solve(context.Background())
	if err == nil {
		t.Fatalf("expected an Unsatisfiable error")
	}
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a *Error", err)
	}
	if serr.Kind != Unsatisfiable {
		t.Fatalf("error kind=%v want Unsatisfiable", serr.Kind)
	}
	if len(serr.Core) == 0 {
		t.Fatalf("debug mode should have populated an unsat core")
	}
}

func TestObjectiveReferencingUnaddedIndicatorIsEncodingError(t *testing.T) {
	p := NewProblem("DanglingObjective", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	ind, err := NewIndicator(reg, "Unused", func(ctx *EncoderCtx) z3.AST { return task.Start }, nil, nil)
	if err != nil {
		t.Fatalf("NewIndicator: %v", err)
	}
	// intentionally never added to p via AddIndicator.
	obj, err := NewObjective(reg, "DanglingObj", ind, Minimize, 1)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}
	if err := p.AddObjective(obj); err != nil {
		t.Fatalf("AddObjective: %v", err)
	}

	s := NewSolver(p, DefaultOptions())
	_, err = s.Solve(context.Background())
	if err == nil {
		t.Fatalf("expected an EncodingError for an objective referencing an unadded indicator")
	}
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a *Error", err)
	}
	if serr.Kind != EncodingError {
		t.Fatalf("error kind=%v want EncodingError", serr.Kind)
	}
}

//go:build cgo
// +build cgo

package scheduler

import "testing"

func TestBufferLevelBounds(t *testing.T) {
	p := NewProblem("BufferBounds", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T", 4)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddConstraint(NewTaskStartAt(task, 1, false)); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	initial := int64(5)
	lower := int64(0)
	buf, err := NewBuffer(reg, "Buf", NonConcurrentBuffer, &initial, nil, &lower, nil)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := buf.TaskUnloadBuffer(task, 5); err != nil {
		t.Fatalf("TaskUnloadBuffer: %v", err)
	}
	if err := p.AddBuffer(buf); err != nil {
		t.Fatalf("AddBuffer: %v", err)
	}

	sol := solveProblem(t, p)
	for _, pt := range sol.Buffers["Buf"] {
		if pt.Level < 0 {
			t.Fatalf("buffer level %d at time %d violates lower bound 0", pt.Level, pt.Time)
		}
	}
}

func TestBufferLoadUnloadExactness(t *testing.T) {
	p := NewProblem("BufferFlowExact", nil)
	reg := p.Registry()

	task, err := NewFixedDurationTask(reg, "T1", 4)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	if err := p.AddConstraint(NewTaskStartAt(task, 1, false)); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	initial1, initial2 := int64(5), int64(0)
	buf1, err := NewBuffer(reg, "Buffer1", NonConcurrentBuffer, &initial1, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewBuffer Buffer1: %v", err)
	}
	buf2, err := NewBuffer(reg, "Buffer2", NonConcurrentBuffer, &initial2, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewBuffer Buffer2: %v", err)
	}
	if err := buf1.TaskUnloadBuffer(task, 1); err != nil {
		t.Fatalf("TaskUnloadBuffer: %v", err)
	}
	if err := buf2.TaskLoadBuffer(task, 1); err != nil {
		t.Fatalf("TaskLoadBuffer: %v", err)
	}
	if err := p.AddBuffer(buf1); err != nil {
		t.Fatalf("AddBuffer Buffer1: %v", err)
	}
	if err := p.AddBuffer(buf2); err != nil {
		t.Fatalf("AddBuffer Buffer2: %v", err)
	}

	sol := solveProblem(t, p)
	final1 := sol.Buffers["Buffer1"][len(sol.Buffers["Buffer1"])-1].Level
	final2 := sol.Buffers["Buffer2"][len(sol.Buffers["Buffer2"])-1].Level
	if final1 != 4 {
		t.Fatalf("Buffer1 final level=%d want 4", final1)
	}
	if final2 != 1 {
		t.Fatalf("Buffer2 final level=%d want 1", final2)
	}
}

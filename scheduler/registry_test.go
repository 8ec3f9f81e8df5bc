package scheduler

import (
	"errors"
	"testing"
)

func TestRegistryRejectsDuplicateTaskNames(t *testing.T) {
	reg := newRegistry()
	if _, err := NewFixedDurationTask(reg, "T", 1); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := NewFixedDurationTask(reg, "T", 2)
	if err == nil {
		t.Fatalf("expected a duplicate-name error on the second T")
	}
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("error %v is not a *DuplicateNameError", err)
	}
}

func TestRegistryAllowsSameNameAcrossKinds(t *testing.T) {
	reg := newRegistry()
	if _, err := NewFixedDurationTask(reg, "X", 1); err != nil {
		t.Fatalf("task X: %v", err)
	}
	if _, err := NewWorker(reg, "X", 0, nil); err != nil {
		t.Fatalf("worker X: %v", err)
	}
}

func TestVarNameIncludesUID(t *testing.T) {
	reg := newRegistry()
	task, err := NewFixedDurationTask(reg, "T", 1)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	name := task.varName(kindTask, "start")
	want := "Task_T_" + itoa(task.UID()) + "_start"
	if name != want {
		t.Fatalf("varName=%q want %q", name, want)
	}
}

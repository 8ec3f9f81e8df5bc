//go:build cgo
// +build cgo

package main

import (
	"fmt"

	"github.com/tpaviot/go-scheduler/scheduler"
	"github.com/tpaviot/go-scheduler/z3"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func helloWorldProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	p := scheduler.NewProblem("HelloWorld", nil)
	reg := p.Registry()

	a, err := scheduler.NewFixedDurationTask(reg, "A", 2)
	must(err)
	b, err := scheduler.NewFixedDurationTask(reg, "B", 2)
	must(err)
	must(p.AddTask(a))
	must(p.AddTask(b))
	must(p.AddConstraint(scheduler.NewTaskPrecedence(a, b, scheduler.PrecedenceLax, 0, false)))

	makespan, err := scheduler.NewIndicator(reg, "Makespan", scheduler.MakespanExpression([]*scheduler.Task{a, b}), nil, nil)
	must(err)
	must(p.AddIndicator(makespan))
	obj, err := scheduler.NewObjective(reg, "MinMakespan", makespan, scheduler.Minimize, 1)
	must(err)
	must(p.AddObjective(obj))

	return p, func(sol *scheduler.Solution) {
		fmt.Printf("A: [%d,%d]\n", sol.Tasks["A"].Start, sol.Tasks["A"].End)
		fmt.Printf("B: [%d,%d]\n", sol.Tasks["B"].Start, sol.Tasks["B"].End)
		fmt.Printf("makespan=%d optimal=%v\n", sol.Indicators["Makespan"], sol.Optimal)
	}
}

func flowShopProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	durations := [4][3]int64{
		{2, 5, 6},
		{1, 5, 7},
		{1, 4, 1},
		{3, 4, 7},
	}
	releaseDates := [4]int64{0, 9, 2, 7}

	p := scheduler.NewProblem("FlowShop", nil)
	reg := p.Registry()

	machines := make([]*scheduler.Worker, 3)
	for m := 0; m < 3; m++ {
		w, err := scheduler.NewWorker(reg, fmt.Sprintf("M%d", m+1), 0, nil)
		must(err)
		machines[m] = w
		must(p.AddResource(w))
	}

	tasks := make([][3]*scheduler.Task, 4)
	var all []*scheduler.Task
	for j := 0; j < 4; j++ {
		for m := 0; m < 3; m++ {
			t, err := scheduler.NewFixedDurationTask(reg, fmt.Sprintf("J%d_M%d", j+1, m+1), durations[j][m])
			must(err)
			rd := releaseDates[j]
			t.ReleaseDate = &rd
			t.AddResource(machines[m], false)
			tasks[j][m] = t
			all = append(all, t)
			must(p.AddTask(t))
		}
		for m := 0; m+1 < 3; m++ {
			must(p.AddConstraint(scheduler.NewTaskPrecedence(tasks[j][m], tasks[j][m+1], scheduler.PrecedenceLax, 0, false)))
		}
	}

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			orderOnM1 := func(ctx *scheduler.EncoderCtx) z3.AST {
				return z3.Le(tasks[i][0].End, tasks[j][0].Start)
			}
			for m := 1; m < 3; m++ {
				mm := m
				consistent := func(ctx *scheduler.EncoderCtx) z3.AST {
					return z3.Eq(orderOnM1(ctx), z3.Le(tasks[i][mm].End, tasks[j][mm].Start))
				}
				must(p.AddConstraint(scheduler.ConstraintFromExpression(consistent)))
			}
		}
	}

	makespan, err := scheduler.NewIndicator(reg, "Makespan", scheduler.MakespanExpression(all), nil, nil)
	must(err)
	must(p.AddIndicator(makespan))
	obj, err := scheduler.NewObjective(reg, "MinMakespan", makespan, scheduler.Minimize, 1)
	must(err)
	must(p.AddObjective(obj))

	return p, func(sol *scheduler.Solution) {
		fmt.Printf("makespan=%d optimal=%v\n", sol.Indicators["Makespan"], sol.Optimal)
		for j := 0; j < 4; j++ {
			fmt.Printf("job %d: M1[%d,%d] M2[%d,%d] M3[%d,%d]\n", j+1,
				sol.Tasks[tasks[j][0].Name()].Start, sol.Tasks[tasks[j][0].Name()].End,
				sol.Tasks[tasks[j][1].Name()].Start, sol.Tasks[tasks[j][1].Name()].End,
				sol.Tasks[tasks[j][2].Name()].Start, sol.Tasks[tasks[j][2].Name()].End)
		}
	}
}

func optionalTasksProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	horizon := int64(10)
	p := scheduler.NewProblem("OptionalForceScheduleN", &horizon)
	reg := p.Registry()

	var tasks []*scheduler.Task
	for i := 0; i < 5; i++ {
		t, err := scheduler.NewFixedDurationTask(reg, fmt.Sprintf("T%d", i+1), 1)
		must(err)
		t.Optional = true
		tasks = append(tasks, t)
		must(p.AddTask(t))
	}
	must(p.AddConstraint(scheduler.NewForceScheduleNOptionalTasks(tasks, 3, scheduler.CardinalityExact)))

	return p, func(sol *scheduler.Solution) {
		count := 0
		for _, t := range tasks {
			ts := sol.Tasks[t.Name()]
			fmt.Printf("%s: scheduled=%v\n", t.Name(), ts.Scheduled)
			if ts.Scheduled {
				count++
			}
		}
		fmt.Printf("scheduled count=%d\n", count)
	}
}

func bufferFlowProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	p := scheduler.NewProblem("BufferFlow", nil)
	reg := p.Registry()

	t1, err := scheduler.NewFixedDurationTask(reg, "T1", 4)
	must(err)
	must(p.AddTask(t1))
	must(p.AddConstraint(scheduler.NewTaskStartAt(t1, 1, false)))

	initial1, initial2 := int64(5), int64(0)
	buf1, err := scheduler.NewBuffer(reg, "Buffer1", scheduler.NonConcurrentBuffer, &initial1, nil, nil, nil)
	must(err)
	buf2, err := scheduler.NewBuffer(reg, "Buffer2", scheduler.NonConcurrentBuffer, &initial2, nil, nil, nil)
	must(err)
	must(buf1.TaskUnloadBuffer(t1, 1))
	must(buf2.TaskLoadBuffer(t1, 1))
	must(p.AddBuffer(buf1))
	must(p.AddBuffer(buf2))

	return p, func(sol *scheduler.Solution) {
		fmt.Println("Buffer1:", sol.Buffers["Buffer1"])
		fmt.Println("Buffer2:", sol.Buffers["Buffer2"])
	}
}

func weightedObjectiveProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	horizon := int64(20)
	p := scheduler.NewProblem("WeightedObjective", &horizon)
	reg := p.Registry()

	t1, err := scheduler.NewFixedDurationTask(reg, "T1", 3)
	must(err)
	t2, err := scheduler.NewFixedDurationTask(reg, "T2", 3)
	must(err)
	must(p.AddTask(t1))
	must(p.AddTask(t2))

	coupled := func(ctx *scheduler.EncoderCtx) z3.AST {
		return z3.Eq(t1.End, z3.Sub(ctx.IntVal(20), t2.Start))
	}
	must(p.AddConstraint(scheduler.ConstraintFromExpression(coupled)))

	endInd, err := scheduler.NewIndicator(reg, "T1End", func(ctx *scheduler.EncoderCtx) z3.AST { return t1.End }, nil, nil)
	must(err)
	startInd, err := scheduler.NewIndicator(reg, "T2Start", func(ctx *scheduler.EncoderCtx) z3.AST { return t2.Start }, nil, nil)
	must(err)
	must(p.AddIndicator(endInd))
	must(p.AddIndicator(startInd))

	obj1, err := scheduler.NewObjective(reg, "MaxT1End", endInd, scheduler.Maximize, 1)
	must(err)
	obj2, err := scheduler.NewObjective(reg, "MaxT2Start", startInd, scheduler.Maximize, 2)
	must(err)
	must(p.AddObjective(obj1))
	must(p.AddObjective(obj2))

	return p, func(sol *scheduler.Solution) {
		fmt.Printf("T1.end=%d T2.start=%d optimal=%v\n", sol.Indicators["T1End"], sol.Indicators["T2Start"], sol.Optimal)
	}
}

func cumulativeProblem() (*scheduler.Problem, func(*scheduler.Solution)) {
	horizon := int64(10)
	p := scheduler.NewProblem("Cumulative", &horizon)
	reg := p.Registry()

	m, err := scheduler.NewCumulativeWorker(reg, "M", 2, 0, nil)
	must(err)
	must(p.AddResource(m))

	var tasks []*scheduler.Task
	for i := 0; i < 3; i++ {
		t, err := scheduler.NewFixedDurationTask(reg, fmt.Sprintf("T%d", i+1), 5)
		must(err)
		t.AddResource(m, false)
		tasks = append(tasks, t)
		must(p.AddTask(t))
	}

	return p, func(sol *scheduler.Solution) {
		for _, t := range tasks {
			ts := sol.Tasks[t.Name()]
			fmt.Printf("%s: [%d,%d]\n", t.Name(), ts.Start, ts.End)
		}
	}
}

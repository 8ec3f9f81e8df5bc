//go:build cgo
// +build cgo

// Command pscheduler runs one of the library's built-in example problems and
// prints the resulting solution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tpaviot/go-scheduler/scheduler"
)

var builtins = map[string]func() (*scheduler.Problem, func(*scheduler.Solution)){
	"helloworld": helloWorldProblem,
	"flowshop":   flowShopProblem,
	"optional":   optionalTasksProblem,
	"bufferflow": bufferFlowProblem,
	"weighted":   weightedObjectiveProblem,
	"cumulative": cumulativeProblem,
}

func main() {
	fs := flag.NewFlagSet("pscheduler", flag.ExitOnError)
	problemName := fs.String("problem", "helloworld", "built-in problem to run (helloworld, flowshop, optional, bufferflow, weighted, cumulative)")
	maxTimeS := fs.Int("max-time", 0, "solver timeout in seconds, 0 for no timeout")
	fs.Parse(os.Args[1:])

	build, ok := builtins[*problemName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown problem %q\n", *problemName)
		os.Exit(1)
	}

	problem, report := build()
	opts := scheduler.DefaultOptions()
	opts.MaxTimeS = *maxTimeS

	s := scheduler.NewSolver(problem, opts)
	ctx := context.Background()
	if *maxTimeS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*maxTimeS)*time.Second)
		defer cancel()
	}

	sol, err := s.Solve(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	report(sol)
}

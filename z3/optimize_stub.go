//go:build !cgo
// +build !cgo

package z3

// Placeholder types for documentation-only builds (no functionality).

type Optimize struct{}

type ObjectiveHandle struct{}

func (ctx *Context) NewOptimize() *Optimize { return &Optimize{} }

//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import (
	"errors"
	"runtime"
	"strconv"
	"unsafe"
)

// Optimize wraps a Z3_optimize handle, Z3's native multi-objective solver.
// Unlike Solver, Optimize accepts minimize/maximize objectives and supports
// the lexicographic, box and pareto priority strategies natively; the
// priority strategy is selected with SetPriority before the objectives are
// registered.
type Optimize struct {
	ctx *Context
	o   C.Z3_optimize
}

// ObjectiveHandle identifies a single minimize/maximize objective registered
// with an Optimize instance, in registration order. It is required by
// Optimize.Upper/Lower to read back the objective's value bounds.
type ObjectiveHandle struct {
	idx C.uint
}

// NewOptimize creates a fresh optimize context attached to ctx.
func (ctx *Context) NewOptimize() *Optimize {
	o := &Optimize{ctx, C.Z3_mk_optimize(ctx.c)}
	C.Z3_optimize_inc_ref(ctx.c, o.o)
	runtime.SetFinalizer(o, func(x *Optimize) { x.Close() })
	return o
}

// Close releases the underlying Z3 optimize reference.
func (o *Optimize) Close() {
	if o != nil && o.o != nil {
		C.Z3_optimize_dec_ref(o.ctx.c, o.o)
		o.o = nil
	}
}

// Assert adds a hard constraint.
func (o *Optimize) Assert(a AST) {
	C.Z3_optimize_assert(o.ctx.c, o.o, a.a)
}

// AssertSoft adds a soft constraint with the given weight under the named
// comparator group ("" selects the default group). Soft constraints that
// cannot all be satisfied are relaxed in increasing order of weight.
func (o *Optimize) AssertSoft(a AST, weight string, group string) {
	wstr := C.CString(weight)
	defer C.free(unsafe.Pointer(wstr))
	sym := o.ctx.StringSymbol(group)
	C.Z3_optimize_assert_soft(o.ctx.c, o.o, a.a, wstr, sym)
}

// Minimize registers a minimization objective and returns a handle that can
// later be used to read back its bound from a solved model.
func (o *Optimize) Minimize(a AST) ObjectiveHandle {
	idx := C.Z3_optimize_minimize(o.ctx.c, o.o, a.a)
	return ObjectiveHandle{idx}
}

// Maximize registers a maximization objective and returns a handle.
func (o *Optimize) Maximize(a AST) ObjectiveHandle {
	idx := C.Z3_optimize_maximize(o.ctx.c, o.o, a.a)
	return ObjectiveHandle{idx}
}

// Push creates a new optimize scope.
func (o *Optimize) Push() {
	C.Z3_optimize_push(o.ctx.c, o.o)
}

// Pop removes the most recently pushed optimize scope.
func (o *Optimize) Pop() {
	C.Z3_optimize_pop(o.ctx.c, o.o)
}

// SetPriority selects the multi-objective combination strategy: "lex"
// (lexicographic, the Z3 default), "box" (independent per-objective optima)
// or "pareto" (enumerate Pareto-optimal points one Check call at a time).
func (o *Optimize) SetPriority(priority string) error {
	return o.SetParam("priority", priority)
}

// SetParam sets a Z3 optimize parameter (e.g. "priority", "timeout"),
// mirroring Solver.SetOption but going through the Z3_params API since
// Z3_optimize has no SMT-LIB (set-option) pass-through.
func (o *Optimize) SetParam(key, value string) error {
	params := C.Z3_mk_params(o.ctx.c)
	C.Z3_params_inc_ref(o.ctx.c, params)
	defer C.Z3_params_dec_ref(o.ctx.c, params)
	sym := o.ctx.StringSymbol(key)
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		C.Z3_params_set_uint(o.ctx.c, params, sym, C.uint(n))
	} else {
		vstr := C.CString(value)
		defer C.free(unsafe.Pointer(vstr))
		C.Z3_params_set_symbol(o.ctx.c, params, sym, C.Z3_mk_string_symbol(o.ctx.c, vstr))
	}
	C.Z3_optimize_set_params(o.ctx.c, o.o, params)
	if code := C.Z3_get_error_code(o.ctx.c); code != C.Z3_OK {
		msg := C.Z3_get_error_msg(o.ctx.c, code)
		if msg != nil {
			return errors.New(C.GoString(msg))
		}
		return errors.New("optimize set-param error")
	}
	return nil
}

// Check runs the optimize context with the currently asserted constraints
// and objectives. With the pareto priority, repeated calls to Check after a
// Sat result enumerate successive Pareto-optimal solutions until Unsat is
// returned.
func (o *Optimize) Check() (CheckResult, error) {
	r := C.Z3_optimize_check(o.ctx.c, o.o, 0, nil)
	switch r {
	case C.Z3_L_TRUE:
		return Sat, nil
	case C.Z3_L_FALSE:
		return Unsat, nil
	default:
		rstr := C.Z3_optimize_get_reason_unknown(o.ctx.c, o.o)
		if rstr != nil {
			return Unknown, errors.New(C.GoString(rstr))
		}
		return Unknown, errors.New("unknown")
	}
}

// CheckAssumptions runs Check under the given assumption literals, mirroring
// Solver.CheckAssumptions so debug mode's tracking-boolean scheme works the
// same way against either backend.
func (o *Optimize) CheckAssumptions(assumptions []AST) (CheckResult, error) {
	cargs := make([]C.Z3_ast, len(assumptions))
	for i, a := range assumptions {
		cargs[i] = a.a
	}
	var ptr *C.Z3_ast
	if len(cargs) > 0 {
		ptr = (*C.Z3_ast)(unsafe.Pointer(&cargs[0]))
	}
	r := C.Z3_optimize_check(o.ctx.c, o.o, C.uint(len(cargs)), ptr)
	switch r {
	case C.Z3_L_TRUE:
		return Sat, nil
	case C.Z3_L_FALSE:
		return Unsat, nil
	default:
		rstr := C.Z3_optimize_get_reason_unknown(o.ctx.c, o.o)
		if rstr != nil {
			return Unknown, errors.New(C.GoString(rstr))
		}
		return Unknown, errors.New("unknown")
	}
}

// UnsatCore returns the minimal subset of the last CheckAssumptions call's
// assumption literals whose conjunction is unsatisfiable.
func (o *Optimize) UnsatCore() []AST {
	vec := C.Z3_optimize_get_unsat_core(o.ctx.c, o.o)
	if vec == nil {
		return nil
	}
	C.Z3_ast_vector_inc_ref(o.ctx.c, vec)
	defer C.Z3_ast_vector_dec_ref(o.ctx.c, vec)
	n := int(C.Z3_ast_vector_size(o.ctx.c, vec))
	out := make([]AST, 0, n)
	for i := 0; i < n; i++ {
		a := C.Z3_ast_vector_get(o.ctx.c, vec, C.uint(i))
		if a == nil {
			continue
		}
		C.Z3_inc_ref(o.ctx.c, a)
		out = append(out, AST{o.ctx, a})
	}
	return out
}

// Model retrieves the model produced by the most recent Check.
func (o *Optimize) Model() *Model {
	m := C.Z3_optimize_get_model(o.ctx.c, o.o)
	if m == nil {
		return nil
	}
	C.Z3_model_inc_ref(o.ctx.c, m)
	mod := &Model{o.ctx, m}
	runtime.SetFinalizer(mod, func(x *Model) { x.Close() })
	return mod
}

// Lower returns the current lower bound AST for the objective identified by
// h; after a decisive Check this is the objective's optimal value.
func (o *Optimize) Lower(h ObjectiveHandle) AST {
	a := C.Z3_optimize_get_lower(o.ctx.c, o.o, h.idx)
	C.Z3_inc_ref(o.ctx.c, a)
	return AST{o.ctx, a}
}

// Upper returns the current upper bound AST for the objective identified by h.
func (o *Optimize) Upper(h ObjectiveHandle) AST {
	a := C.Z3_optimize_get_upper(o.ctx.c, o.o, h.idx)
	C.Z3_inc_ref(o.ctx.c, a)
	return AST{o.ctx, a}
}

// String returns the SMT-LIB-like textual representation of the current
// assertions and objectives, useful for debugging.
func (o *Optimize) String() string {
	if o == nil || o.o == nil {
		return "<nil-optimize>"
	}
	s := C.Z3_optimize_to_string(o.ctx.c, o.o)
	if s == nil {
		return "<invalid-optimize>"
	}
	return C.GoString(s)
}

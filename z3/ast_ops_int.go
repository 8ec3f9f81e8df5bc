//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
*/
import "C"

// Xor builds the exclusive-or of two boolean ASTs.
func Xor(x, y AST) AST {
	ctx := x.ctx
	a := C.Z3_mk_xor(ctx.c, x.a, y.a)
	C.Z3_inc_ref(ctx.c, a)
	return AST{ctx, a}
}

// Div builds integer division x div y, per SMT-LIB Euclidean semantics
// (rounding down for a positive divisor).
func Div(x, y AST) AST {
	ctx := x.ctx
	a := C.Z3_mk_div(ctx.c, x.a, y.a)
	C.Z3_inc_ref(ctx.c, a)
	return AST{ctx, a}
}

// Mod builds the integer modulus x mod y, per SMT-LIB Euclidean semantics.
func Mod(x, y AST) AST {
	ctx := x.ctx
	a := C.Z3_mk_mod(ctx.c, x.a, y.a)
	C.Z3_inc_ref(ctx.c, a)
	return AST{ctx, a}
}

// Neg builds the arithmetic negation of a numeric AST.
func Neg(x AST) AST {
	ctx := x.ctx
	a := C.Z3_mk_unary_minus(ctx.c, x.a)
	C.Z3_inc_ref(ctx.c, a)
	return AST{ctx, a}
}

// Ne builds the disequality x != y.
func Ne(x, y AST) AST {
	return Eq(x, y).Not()
}

package scheduler

import "github.com/tpaviot/go-scheduler/z3"

// Constraint is the uniform node spec.md §4.6 describes: every atomic
// constraint and every FOL combinator reifies itself to a fresh boolean
// equivalent to its guarded body (atomic) or to a boolean combination of its
// children's reified booleans (combinator), so Problem.encode can treat both
// the same way — assert the top-level constraint's reified boolean.
type Constraint interface {
	reify(ctx *EncoderCtx) z3.AST
}

// Expression is a deferred boolean (or, where noted, integer) term over
// task/resource/buffer variables: those variables only exist once contribute
// has run, so an expression is a closure rather than a value, mirroring how
// z3/ast_utils.go treats an AST.Walk visitor as a function rather than a
// fixed tree at construction time (spec.md §9's dynamic-dispatch strategy,
// applied to condition expressions instead of entities).
type Expression func(ctx *EncoderCtx) z3.AST

// constraintBase is embedded by every atomic constraint variant: it owns the
// name/UID identity, the optional flag, and the list of referenced tasks
// whose Scheduled flags form part of the guard (spec.md §4.4's "guard =
// conjunction of scheduled flags of referenced tasks, ANDed with applied if
// optional").
type constraintBase struct {
	namedUIDObject
	Optional bool
	Applied  z3.AST
	refs     []*Task
}

func newConstraintBase(name string, refs ...*Task) constraintBase {
	return constraintBase{namedUIDObject: newNamedUIDObject(name), refs: refs}
}

// fullGuard builds the conjunction of referenced tasks' Scheduled flags,
// ANDed with a fresh Applied boolean when the constraint is optional.
func (c *constraintBase) fullGuard(ctx *EncoderCtx) z3.AST {
	var parts []z3.AST
	for _, t := range c.refs {
		parts = append(parts, t.Scheduled)
	}
	if c.Optional {
		c.Applied = ctx.Bool(c.varName(kindConstraint, "applied"))
		parts = append(parts, c.Applied)
	}
	if len(parts) == 0 {
		return ctx.BoolVal(true)
	}
	return z3.And(parts...)
}

// reifyBody is the shared tail every atomic constraint's reify calls once it
// has computed its own unguarded body: it builds `guard -> body`, reifies it
// behind a fresh boolean, and asserts the biconditional.
func (c *constraintBase) reifyBody(ctx *EncoderCtx, body z3.AST) z3.AST {
	guard := c.fullGuard(ctx)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.Implies(guard, body)))
	return b
}

// --- FOL combinators (spec.md §4.6) ---

type andConstraint struct {
	namedUIDObject
	children []Constraint
}

// And builds the conjunction combinator.
func And(children ...Constraint) Constraint {
	return &andConstraint{namedUIDObject: newNamedUIDObject("And"), children: children}
}

func (c *andConstraint) reify(ctx *EncoderCtx) z3.AST {
	terms := reifyAll(ctx, c.children)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.And(terms...)))
	return b
}

type orConstraint struct {
	namedUIDObject
	children []Constraint
}

// Or builds the disjunction combinator.
func Or(children ...Constraint) Constraint {
	return &orConstraint{namedUIDObject: newNamedUIDObject("Or"), children: children}
}

func (c *orConstraint) reify(ctx *EncoderCtx) z3.AST {
	terms := reifyAll(ctx, c.children)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.Or(terms...)))
	return b
}

type xorConstraint struct {
	namedUIDObject
	a, b Constraint
}

// XorConstraint builds the exclusive-or combinator over exactly two
// constraints.
func XorConstraint(a, b Constraint) Constraint {
	return &xorConstraint{namedUIDObject: newNamedUIDObject("Xor"), a: a, b: b}
}

func (c *xorConstraint) reify(ctx *EncoderCtx) z3.AST {
	ta, tb := c.a.reify(ctx), c.b.reify(ctx)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.Xor(ta, tb)))
	return b
}

type notConstraint struct {
	namedUIDObject
	child Constraint
}

// NotConstraint builds the negation combinator.
func NotConstraint(child Constraint) Constraint {
	return &notConstraint{namedUIDObject: newNamedUIDObject("Not"), child: child}
}

func (c *notConstraint) reify(ctx *EncoderCtx) z3.AST {
	t := c.child.reify(ctx)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, t.Not()))
	return b
}

type impliesConstraint struct {
	namedUIDObject
	cond  Expression
	thens []Constraint
}

// ImpliesConstraint builds `cond -> And(thens...)`.
func ImpliesConstraint(cond Expression, thens ...Constraint) Constraint {
	return &impliesConstraint{namedUIDObject: newNamedUIDObject("Implies"), cond: cond, thens: thens}
}

func (c *impliesConstraint) reify(ctx *EncoderCtx) z3.AST {
	condTerm := c.cond(ctx)
	thenTerms := reifyAll(ctx, c.thens)
	thenAll := ctx.BoolVal(true)
	if len(thenTerms) > 0 {
		thenAll = z3.And(thenTerms...)
	}
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.Implies(condTerm, thenAll)))
	return b
}

type ifThenElseConstraint struct {
	namedUIDObject
	cond  Expression
	thens []Constraint
	elses []Constraint
}

// IfThenElseConstraint builds `cond -> And(thens...)` AND `!cond ->
// And(elses...)`.
func IfThenElseConstraint(cond Expression, thens, elses []Constraint) Constraint {
	return &ifThenElseConstraint{namedUIDObject: newNamedUIDObject("IfThenElse"), cond: cond, thens: thens, elses: elses}
}

func (c *ifThenElseConstraint) reify(ctx *EncoderCtx) z3.AST {
	condTerm := c.cond(ctx)
	thenTerms := reifyAll(ctx, c.thens)
	elseTerms := reifyAll(ctx, c.elses)
	thenAll, elseAll := ctx.BoolVal(true), ctx.BoolVal(true)
	if len(thenTerms) > 0 {
		thenAll = z3.And(thenTerms...)
	}
	if len(elseTerms) > 0 {
		elseAll = z3.And(elseTerms...)
	}
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, z3.Ite(condTerm, thenAll, elseAll)))
	return b
}

type exprConstraint struct {
	namedUIDObject
	expr Expression
}

// ConstraintFromExpression passes a raw boolean Expression straight into the
// reification pool.
func ConstraintFromExpression(expr Expression) Constraint {
	return &exprConstraint{namedUIDObject: newNamedUIDObject("Expr"), expr: expr}
}

func (c *exprConstraint) reify(ctx *EncoderCtx) z3.AST {
	body := c.expr(ctx)
	b := ctx.Bool(c.varName(kindConstraint, "reified"))
	ctx.Assert(c.varName(kindConstraint, "reify_def"), z3.Eq(b, body))
	return b
}

func reifyAll(ctx *EncoderCtx, cs []Constraint) []z3.AST {
	out := make([]z3.AST, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.reify(ctx))
	}
	return out
}

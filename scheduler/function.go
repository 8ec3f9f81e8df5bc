package scheduler

import "math/big"

// Function is the small closed algebraic family spec.md §3 "Cost/productivity
// functions" defines: one evaluation operation over an integer t, and one
// "integral from a to b" operation returning an integer, grounded on
// processscheduler/function.py's ConstantFunction/LinearFunction/
// PolynomialFunction trio.
type Function interface {
	// Eval returns the function's value at integer t.
	Eval(t int64) int64
	// Integral returns the exact integer value of ∫[a,b] f(t) dt, per the
	// rules in spec.md §4.8.
	Integral(a, b int64) (int64, error)
}

// Constant is a cost/productivity function whose value never varies with t.
type Constant struct {
	Value int64
}

// Eval implements Function.
func (c Constant) Eval(int64) int64 { return c.Value }

// Integral implements Function: k*(b-a).
func (c Constant) Integral(a, b int64) (int64, error) {
	return c.Value * (b - a), nil
}

// Linear is the cost/productivity function F(t) = Slope*t + Intercept.
type Linear struct {
	Slope     int64
	Intercept int64
}

// Eval implements Function.
func (l Linear) Eval(t int64) int64 { return l.Slope*t + l.Intercept }

// Integral implements Function: slope*(b²-a²)/2 + intercept*(b-a).
//
// The b²-a² term is only guaranteed even when (b-a) is even (spec.md §4.8
// /§9 documents this as a caveat requiring either an even-length window or
// exact rational accumulation with a final floor). We take the latter route
// unconditionally so odd-length windows never error: the rational value is
// computed exactly and floored, which is exact whenever the window is even
// and a documented, deterministic rounding-down otherwise.
func (l Linear) Integral(a, b int64) (int64, error) {
	sq := new(big.Int).Sub(
		new(big.Int).Mul(big.NewInt(b), big.NewInt(b)),
		new(big.Int).Mul(big.NewInt(a), big.NewInt(a)),
	)
	slopeTerm := new(big.Rat).SetFrac(new(big.Int).Mul(big.NewInt(l.Slope), sq), big.NewInt(2))
	interceptTerm := new(big.Rat).SetInt64(l.Intercept * (b - a))
	total := new(big.Rat).Add(slopeTerm, interceptTerm)
	return ratFloor(total), nil
}

// Polynomial is a cost/productivity function under the closed form
// C(x) = Coefficients[0] + Coefficients[1]*x + ... + Coefficients[n]*x^n.
// All coefficients must be integers; spec.md §4.8 requires the implementation
// reject non-integer coefficients, which in Go's typed-integer world is
// enforced simply by the field's int64 type.
type Polynomial struct {
	Coefficients []int64
}

// Eval implements Function using Horner's method.
func (p Polynomial) Eval(t int64) int64 {
	if len(p.Coefficients) == 0 {
		return 0
	}
	result := p.Coefficients[len(p.Coefficients)-1]
	for i := len(p.Coefficients) - 2; i >= 0; i-- {
		result = result*t + p.Coefficients[i]
	}
	return result
}

// Integral implements Function: the closed-form term-by-term integral
// Σ c_i * (b^(i+1) - a^(i+1)) / (i+1), computed exactly in rational
// arithmetic and floored, per the same caveat as Linear.Integral.
func (p Polynomial) Integral(a, b int64) (int64, error) {
	total := new(big.Rat)
	for i, c := range p.Coefficients {
		if c == 0 {
			continue
		}
		power := int64(i + 1)
		diff := new(big.Int).Sub(bigPow(b, power), bigPow(a, power))
		term := new(big.Rat).SetFrac(new(big.Int).Mul(big.NewInt(c), diff), big.NewInt(power))
		total.Add(total, term)
	}
	return ratFloor(total), nil
}

func bigPow(base int64, exp int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(base), big.NewInt(exp), nil)
}

// ratFloor floors a big.Rat to an int64, rounding toward negative infinity
// rather than toward zero (big.Rat's own integer conversions truncate).
func ratFloor(r *big.Rat) int64 {
	num := r.Num()
	den := r.Denom()
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(num, den, m) // Euclidean division: m has the same sign as den (always positive here)
	return q.Int64()
}

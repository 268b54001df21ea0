package rational

import "math/big"

// Rational is an exact fraction held as raw numerator and denominator
// components. The zero value is 0/0, the undefined value.
type Rational struct {
	num big.Int
	den big.Int
}

// New returns a rational with the given components. A zero numerator
// yields the undefined value regardless of d.
func New(n, d int64) *Rational {
	return new(Rational).SetInt64(n, d)
}

// normalize enforces the zero invariant: a zero numerator forces the
// denominator to zero. Called after every mutation.
func (z *Rational) normalize() {
	if z.num.Sign() == 0 {
		z.den.SetInt64(0)
	}
}

// Set sets z to x and returns z.
func (z *Rational) Set(x *Rational) *Rational {
	if z != x {
		z.num.Set(&x.num)
		z.den.Set(&x.den)
	}
	return z
}

// SetInt64 sets z to n/d and returns z.
func (z *Rational) SetInt64(n, d int64) *Rational {
	z.num.SetInt64(n)
	z.den.SetInt64(d)
	z.normalize()
	return z
}

// SetComponents sets z to num/den, copying both arguments, and returns z.
func (z *Rational) SetComponents(num, den *big.Int) *Rational {
	z.num.Set(num)
	z.den.Set(den)
	z.normalize()
	return z
}

// Add sets z to the cross-multiplied sum x+y and returns z.
// The result components are (x.num*y.den + y.num*x.den) / (x.den*y.den).
func (z *Rational) Add(x, y *Rational) *Rational {
	var n, d, t big.Int
	n.Mul(&x.num, &y.den)
	t.Mul(&y.num, &x.den)
	n.Add(&n, &t)
	d.Mul(&x.den, &y.den)
	return z.SetComponents(&n, &d)
}

// Sub sets z to the cross-multiplied difference x-y and returns z.
func (z *Rational) Sub(x, y *Rational) *Rational {
	var n, d, t big.Int
	n.Mul(&x.num, &y.den)
	t.Mul(&y.num, &x.den)
	n.Sub(&n, &t)
	d.Mul(&x.den, &y.den)
	return z.SetComponents(&n, &d)
}

// Delta sets z to the register delta x-y and returns z. Deltas are plain
// cross-multiplied differences; the name marks call sites that record
// step-to-step movement rather than general arithmetic.
func (z *Rational) Delta(x, y *Rational) *Rational {
	return z.Sub(x, y)
}

// Mul sets z to the component product x*y and returns z.
// The result components are (x.num*y.num) / (x.den*y.den).
func (z *Rational) Mul(x, y *Rational) *Rational {
	var n, d big.Int
	n.Mul(&x.num, &y.num)
	d.Mul(&x.den, &y.den)
	return z.SetComponents(&n, &d)
}

// Div sets z to the cross-multiplied quotient x/y and reports whether
// the division was performed. Division by a zero or undefined y fails
// and leaves z untouched. The result components are
// (x.num*y.den) / (x.den*y.num).
func (z *Rational) Div(x, y *Rational) bool {
	if y.num.Sign() == 0 {
		return false
	}
	var n, d big.Int
	n.Mul(&x.num, &y.den)
	d.Mul(&x.den, &y.num)
	z.SetComponents(&n, &d)
	return true
}

// Neg sets z to -x and returns z. Negating the undefined value yields
// the undefined value.
func (z *Rational) Neg(x *Rational) *Rational {
	z.num.Neg(&x.num)
	z.den.Set(&x.den)
	z.normalize()
	return z
}

// Abs sets z to x with both components made non-negative and returns z.
// The denominator sign is folded in as well, so -3/-4 becomes 3/4.
func (z *Rational) Abs(x *Rational) *Rational {
	z.num.Abs(&x.num)
	z.den.Abs(&x.den)
	z.normalize()
	return z
}

// Cmp compares x and y by value via cross-multiplication:
// x.num*y.den against y.num*x.den. It returns -1, 0, or +1. Unreduced
// aliases of the same value compare equal; use Equal for component
// identity.
func (x *Rational) Cmp(y *Rational) int {
	var lhs, rhs big.Int
	lhs.Mul(&x.num, &y.den)
	rhs.Mul(&y.num, &x.den)
	return lhs.Cmp(&rhs)
}

// Sign returns the sign of the numerator: -1, 0, or +1.
func (x *Rational) Sign() int {
	return x.num.Sign()
}

// IsZero reports whether the numerator is zero. Under the zero
// invariant this is also true exactly for the undefined value.
func (x *Rational) IsZero() bool {
	return x.num.Sign() == 0
}

// Undefined reports whether the denominator is zero.
func (x *Rational) Undefined() bool {
	return x.den.Sign() == 0
}

// Num returns the numerator. The reference is shared with x; callers
// must not mutate it.
func (x *Rational) Num() *big.Int {
	return &x.num
}

// Den returns the denominator. The reference is shared with x; callers
// must not mutate it.
func (x *Rational) Den() *big.Int {
	return &x.den
}

// Equal reports component identity: both numerators and both
// denominators match exactly. 4/6 and 2/3 are not Equal.
func (x *Rational) Equal(y *Rational) bool {
	return x.num.Cmp(&y.num) == 0 && x.den.Cmp(&y.den) == 0
}

// Clone returns a deep copy of x.
func (x *Rational) Clone() *Rational {
	return new(Rational).Set(x)
}

// Float64 returns the component quotient as a float64, correctly
// rounded even when the components themselves exceed float64 range.
// The undefined value yields 0 and quotients beyond float64 range
// saturate to the infinities.
func (x *Rational) Float64() float64 {
	if x.den.Sign() == 0 {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(&x.num, &x.den).Float64()
	return f
}

// String renders the raw components as "num/den". The undefined value
// renders as "0/0".
func (x *Rational) String() string {
	return x.num.String() + "/" + x.den.String()
}

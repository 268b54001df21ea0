// Package rational implements exact fraction arithmetic over arbitrary
// precision integers.
//
// A Rational is a raw (numerator, denominator) pair. Unlike math/big.Rat,
// values are NEVER reduced to lowest terms: 4/6 and 2/3 are distinct
// values that compare equal under Cmp but not under Equal. The component
// trajectory of a computation is the point of the representation, so
// canonicalization anywhere in this package is a bug.
//
// CRITICAL INVARIANT:
//
// A zero numerator forces a zero denominator. Every mutating operation
// re-normalizes, so 0/5 cannot exist; the only zero is 0/0, which doubles
// as the undefined value. Undefined propagates through arithmetic (any
// sum, difference, or product with components of 0/0 collapses to 0/0)
// and division by an undefined or zero value fails explicitly rather
// than producing a value.
//
// The zero value of Rational is 0/0 and is ready to use.
//
// Operations follow the math/big destination-receiver convention:
// z.Add(x, y) stores x+y in z and returns z. Receivers may alias
// arguments.
package rational

package engine

import (
	"math/big"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// primeReps is the Miller-Rabin round count for the pattern predicates.
// Deterministic in practice; the composite-pass odds at 25 rounds are
// below 4^-25.
const primeReps = 25

// signedPrime reports whether the magnitude of n is prime.
func signedPrime(n *big.Int) bool {
	mag := new(big.Int).Abs(n)
	return mag.Cmp(big.NewInt(2)) >= 0 && mag.ProbablyPrime(primeReps)
}

// isSquare reports whether n is a perfect square. Negatives are not.
func isSquare(n *big.Int) bool {
	if n.Sign() < 0 {
		return false
	}
	root := new(big.Int).Sqrt(n)
	root.Mul(root, root)
	return root.Cmp(n) == 0
}

// isFibonacci reports whether n is a Fibonacci number: negatives are
// not, zero and one are, and larger values satisfy the classic test
// that 5n^2+4 or 5n^2-4 is a perfect square.
func isFibonacci(n *big.Int) bool {
	if n.Sign() < 0 {
		return false
	}
	if n.Cmp(big.NewInt(1)) <= 0 {
		return true
	}
	sq := new(big.Int).Mul(n, n)
	sq.Mul(sq, big.NewInt(5))
	plus := new(big.Int).Add(sq, big.NewInt(4))
	minus := new(big.Int).Sub(sq, big.NewInt(4))
	return isSquare(plus) || isSquare(minus)
}

// kthRootMatches reports whether n has an exact integer kth root,
// located by binary search below 2^(bitlen/k + 1).
func kthRootMatches(n *big.Int, k uint) bool {
	one := big.NewInt(1)
	exp := big.NewInt(int64(k))
	lo := big.NewInt(1)
	hi := new(big.Int).Lsh(one, uint(n.BitLen())/k+1)
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		pow := new(big.Int).Exp(mid, exp, nil)
		switch pow.Cmp(n) {
		case 0:
			return true
		case -1:
			lo.Add(mid, one)
		default:
			hi.Sub(mid, one)
		}
	}
	return false
}

// isPerfectPower reports whether n equals a^b for integers a and b > 1.
// Zero and one are excluded.
func isPerfectPower(n *big.Int) bool {
	if n.Cmp(big.NewInt(1)) <= 0 {
		return false
	}
	for k := uint(2); k <= uint(n.BitLen()); k++ {
		if kthRootMatches(n, k) {
			return true
		}
	}
	return false
}

// HasPatternComponent reports whether value carries a detectable
// pattern in its checked components. The numerator side checks
// primality of the magnitude, twin primality against the signed value,
// and Fibonacci and perfect-power membership of the magnitude. The
// denominator side checks primality of the magnitude but feeds the raw
// signed value to the optional predicates, so a negative denominator
// never matches those. Evaluation only; value is never written.
func HasPatternComponent(cfg *config.Config, value *rational.Rational, checkNum, checkDen bool) bool {
	found := false

	if checkNum {
		num := value.Num()

		if signedPrime(num) {
			found = true
		}
		if cfg.TwinPrimeTrigger && signedPrime(num) {
			t := new(big.Int).Add(num, big.NewInt(2))
			if signedPrime(t) {
				found = true
			}
			t.Sub(num, big.NewInt(2))
			if signedPrime(t) {
				found = true
			}
		}
		if cfg.FibonacciTrigger && isFibonacci(new(big.Int).Abs(num)) {
			found = true
		}
		if cfg.PerfectPowerTrigger && isPerfectPower(new(big.Int).Abs(num)) {
			found = true
		}
	}

	if checkDen {
		den := value.Den()

		if signedPrime(den) {
			found = true
		}
		if cfg.FibonacciTrigger && isFibonacci(den) {
			found = true
		}
		if cfg.PerfectPowerTrigger && isPerfectPower(den) {
			found = true
		}
	}

	return found
}

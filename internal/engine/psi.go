package engine

import (
	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// standardTransform swaps the value registers through component-wise
// division: (upsilon, beta) becomes (beta/upsilon, upsilon/beta). Both
// results commit atomically or not at all. Applying it twice does not
// return to the start; components grow because nothing reduces.
func standardTransform(st *State) bool {
	if st.Upsilon.IsZero() || st.Beta.IsZero() {
		return false
	}

	var newUpsilon, newBeta rational.Rational
	newUpsilon.Div(&st.Beta, &st.Upsilon)
	newBeta.Div(&st.Upsilon, &st.Beta)

	// Abnormal inputs with a zero denominator surface here as an
	// undefined quotient.
	if newUpsilon.Undefined() || newBeta.Undefined() {
		return false
	}

	st.Upsilon.Set(&newUpsilon)
	st.Beta.Set(&newBeta)
	return true
}

// tripleTransform rotates all three registers: (upsilon, beta, kappa)
// becomes (beta/kappa, kappa/upsilon, kappa/beta). Commit is atomic
// across the three.
func tripleTransform(st *State) bool {
	if st.Upsilon.IsZero() || st.Beta.IsZero() || st.Koppa.IsZero() {
		return false
	}

	var newUpsilon, newBeta, newKoppa rational.Rational
	newUpsilon.Div(&st.Beta, &st.Koppa)
	newBeta.Div(&st.Koppa, &st.Upsilon)
	newKoppa.Div(&st.Koppa, &st.Beta)

	if newUpsilon.Undefined() || newBeta.Undefined() || newKoppa.Undefined() {
		return false
	}

	st.Upsilon.Set(&newUpsilon)
	st.Beta.Set(&newBeta)
	st.Koppa.Set(&newKoppa)
	return true
}

// primeRegisterCount reports how many of the three register numerators
// are prime in magnitude.
func primeRegisterCount(st *State) int {
	count := 0
	for _, r := range []*rational.Rational{&st.Upsilon, &st.Beta, &st.Koppa} {
		if signedPrime(r.Num()) {
			count++
		}
	}
	return count
}

// TransformStep runs the psi transform and reports whether any fire
// committed. The recent-fire flags clear on entry, so a call that
// cannot fire still erases evidence of earlier fires. Only the
// every-memory mode fires without a pending rho event; the strength
// burst re-evaluates triple upgrades against the live registers
// between fires and stops at the first failure.
func TransformStep(cfg *config.Config, st *State) bool {
	st.PsiRecent = false
	st.PsiTripleRecent = false
	st.PsiStrengthApplied = false

	if !st.RhoPending && cfg.Psi != config.PsiEveryMemory {
		return false
	}

	strength := 1
	if cfg.PsiStrengthParameter && st.RhoPending {
		if pc := primeRegisterCount(st); pc > 0 {
			strength = pc
		}
		if strength > 1 {
			st.PsiStrengthApplied = true
		}
	}

	fired := false
	for i := 0; i < strength; i++ {
		requestTriple := cfg.TriplePsi
		if cfg.ConditionalTriplePsi && primeRegisterCount(st) >= 3 {
			requestTriple = true
		}
		// The tail of a strength burst always rotates.
		if strength >= 3 && i >= strength-3 {
			requestTriple = true
		}

		var ok bool
		if requestTriple {
			ok = tripleTransform(st)
			if ok {
				st.PsiTripleRecent = true
			}
		} else {
			ok = standardTransform(st)
		}
		if !ok {
			break
		}

		fired = true
		st.PsiRecent = true
		if i == 0 {
			st.RhoPending = false
		}
	}
	return fired
}

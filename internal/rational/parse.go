package rational

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseRational parses a fraction literal "N/D" or a bare integer "N"
// into a rational, preserving the written components without reduction.
// A zero numerator normalizes to 0/0 as usual. Components may be any
// size; surrounding whitespace is ignored.
func ParseRational(s string) (*Rational, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil, fmt.Errorf("empty rational literal")
	}

	numText, denText, slashed := strings.Cut(text, "/")
	num, ok := new(big.Int).SetString(strings.TrimSpace(numText), 10)
	if !ok {
		return nil, fmt.Errorf("invalid rational numerator in %q", s)
	}

	den := big.NewInt(1)
	if slashed {
		den, ok = new(big.Int).SetString(strings.TrimSpace(denText), 10)
		if !ok {
			return nil, fmt.Errorf("invalid rational denominator in %q", s)
		}
	}

	return new(Rational).SetComponents(num, den), nil
}

// MustParse parses a fraction literal and panics on error. For use in
// tests and package-level defaults with known-good literals.
func MustParse(s string) *Rational {
	r, err := ParseRational(s)
	if err != nil {
		panic(err)
	}
	return r
}

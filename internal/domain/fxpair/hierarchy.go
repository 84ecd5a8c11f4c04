// Package fxpair resolves two currency codes into their market-convention
// base/quote ordering and handles the OHLC price inversion that ordering
// implies.
package fxpair

import (
	"fmt"
	"strings"
)

// Hierarchy is a fixed total order over currency codes. Earlier entries take
// precedence as the base currency of a pair, following market convention
// rather than alphabetical order.
type Hierarchy []string

// DefaultHierarchy returns the conventional FX base-currency precedence.
func DefaultHierarchy() Hierarchy {
	return Hierarchy{"EUR", "GBP", "AUD", "USD", "CAD", "CHF", "JPY"}
}

// UnknownCurrencyError reports a code absent from the hierarchy. It is
// always surfaced, never silently defaulted.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q: not in configured hierarchy", e.Code)
}

// Rank returns the position of code in the hierarchy (lower is higher
// precedence as base).
func (h Hierarchy) Rank(code string) (int, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	for i, entry := range h {
		if entry == c {
			return i, nil
		}
	}
	return 0, &UnknownCurrencyError{Code: code}
}

// Pair is the canonical ordering of two currencies. Inverted reports that
// the caller supplied the currencies in the opposite order, so any price
// series quoted in the caller's order must be reciprocal-inverted to match.
type Pair struct {
	Base     string
	Quote    string
	Inverted bool
}

// Ticker returns the conventional six-letter pair name, e.g. "USDJPY".
func (p Pair) Ticker() string { return p.Base + p.Quote }

// Normalize resolves (a, b) into market-convention base/quote order. The
// currency ranked earlier in the hierarchy becomes the base; Inverted is set
// when that is b rather than a.
func (h Hierarchy) Normalize(a, b string) (Pair, error) {
	rankA, err := h.Rank(a)
	if err != nil {
		return Pair{}, err
	}
	rankB, err := h.Rank(b)
	if err != nil {
		return Pair{}, err
	}
	if rankA == rankB {
		return Pair{}, fmt.Errorf("cannot pair %q with itself", strings.ToUpper(strings.TrimSpace(a)))
	}
	if rankA < rankB {
		return Pair{Base: h[rankA], Quote: h[rankB]}, nil
	}
	return Pair{Base: h[rankB], Quote: h[rankA], Inverted: true}, nil
}

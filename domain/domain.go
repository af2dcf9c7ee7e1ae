// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadDomain reports a domain whose fields are inconsistent with its kind.
	ErrBadDomain = errors.New("domain: invalid domain")

	// ErrNotBound reports a kind that has no scalar bound translation.
	ErrNotBound = errors.New("domain: kind has no bound form")

	// ErrNotCone reports a kind that has no cone translation.
	ErrNotCone = errors.New("domain: kind has no cone form")

	// ErrDuplicateBound reports a bound attachment to a side already claimed.
	ErrDuplicateBound = errors.New("domain: bound side already attached")

	// ErrNoSuchBound reports a bound drop for a side that is not attached.
	ErrNoSuchBound = errors.New("domain: bound side not attached")
)

// Kind enumerates the domain families a constraint can live in.
type Kind int8

const (
	KindFree         Kind = iota // scalar, no restriction
	KindLessThan                 // scalar x <= up
	KindGreaterThan              // scalar x >= lo
	KindInterval                 // scalar lo <= x <= up
	KindEqualTo                  // scalar x == v
	KindZeros                    // vector, every element zero
	KindNonnegatives             // vector, every element >= 0
	KindNonpositives             // vector, every element <= 0
	KindQuad                     // second-order cone
	KindRotatedQuad              // rotated second-order cone
	KindGeoMean                  // geometric mean cone
	KindExp                      // primal exponential cone
	KindDualExp                  // dual exponential cone
	KindPow                      // primal power cone
	KindDualPow                  // dual power cone
	KindPSD                      // symmetric PSD matrix, packed upper triangle
	KindInteger                  // integrality marker
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindLessThan:
		return "less-than"
	case KindGreaterThan:
		return "greater-than"
	case KindInterval:
		return "interval"
	case KindEqualTo:
		return "equal-to"
	case KindZeros:
		return "zeros"
	case KindNonnegatives:
		return "nonnegatives"
	case KindNonpositives:
		return "nonpositives"
	case KindQuad:
		return "quad"
	case KindRotatedQuad:
		return "rotated-quad"
	case KindGeoMean:
		return "geomean"
	case KindExp:
		return "exp"
	case KindDualExp:
		return "dual-exp"
	case KindPow:
		return "pow"
	case KindDualPow:
		return "dual-pow"
	case KindPSD:
		return "psd"
	case KindInteger:
		return "integer"
	}
	return "unknown"
}

// Domain is one declarative constraint set. Scalar kinds describe a single
// value, vector kinds a tuple of Dim values, cone kinds an ordered tuple in
// caller element order, and KindPSD the packed upper triangle of an
// Order×Order symmetric matrix. Build domains with the constructors;
// Validate rejects hand-assembled inconsistencies.
type Domain struct {
	Kind  Kind
	Dim   int     // element count (packed length for KindPSD)
	Lo    float64 // lower bound where the kind carries one
	Up    float64 // upper bound where the kind carries one
	Par   float64 // power cone exponent
	Order int     // matrix side length for KindPSD
}

// Free returns the unrestricted scalar domain.
func Free() Domain { return Domain{Kind: KindFree, Dim: 1, Lo: math.Inf(-1), Up: math.Inf(1)} }

// LessThan returns the scalar domain x <= up.
func LessThan(up float64) Domain {
	return Domain{Kind: KindLessThan, Dim: 1, Lo: math.Inf(-1), Up: up}
}

// GreaterThan returns the scalar domain x >= lo.
func GreaterThan(lo float64) Domain {
	return Domain{Kind: KindGreaterThan, Dim: 1, Lo: lo, Up: math.Inf(1)}
}

// Interval returns the scalar domain lo <= x <= up.
func Interval(lo, up float64) Domain {
	return Domain{Kind: KindInterval, Dim: 1, Lo: lo, Up: up}
}

// EqualTo returns the scalar domain x == v.
func EqualTo(v float64) Domain { return Domain{Kind: KindEqualTo, Dim: 1, Lo: v, Up: v} }

// Zeros returns the vector domain of n zero elements.
func Zeros(n int) Domain { return Domain{Kind: KindZeros, Dim: n} }

// Nonnegatives returns the vector domain of n elements >= 0.
func Nonnegatives(n int) Domain {
	return Domain{Kind: KindNonnegatives, Dim: n, Lo: 0, Up: math.Inf(1)}
}

// Nonpositives returns the vector domain of n elements <= 0.
func Nonpositives(n int) Domain {
	return Domain{Kind: KindNonpositives, Dim: n, Lo: math.Inf(-1), Up: 0}
}

// Quad returns the n-element second-order cone.
func Quad(n int) Domain { return Domain{Kind: KindQuad, Dim: n} }

// RotatedQuad returns the n-element rotated second-order cone.
func RotatedQuad(n int) Domain { return Domain{Kind: KindRotatedQuad, Dim: n} }

// GeoMean returns the n-element geometric mean cone.
func GeoMean(n int) Domain { return Domain{Kind: KindGeoMean, Dim: n} }

// Exp returns the primal exponential cone (three elements).
func Exp() Domain { return Domain{Kind: KindExp, Dim: 3} }

// DualExp returns the dual exponential cone (three elements).
func DualExp() Domain { return Domain{Kind: KindDualExp, Dim: 3} }

// Pow returns the primal power cone with exponent 0 < a < 1 (three elements).
func Pow(a float64) Domain { return Domain{Kind: KindPow, Dim: 3, Par: a} }

// DualPow returns the dual power cone with exponent 0 < a < 1 (three elements).
func DualPow(a float64) Domain { return Domain{Kind: KindDualPow, Dim: 3, Par: a} }

// PSD returns the domain of n×n symmetric PSD matrices, addressed by the
// packed upper triangle of n(n+1)/2 elements in caller order.
func PSD(n int) Domain { return Domain{Kind: KindPSD, Dim: n * (n + 1) / 2, Order: n} }

// Integer returns the scalar integrality marker domain.
func Integer() Domain { return Domain{Kind: KindInteger, Dim: 1} }

// Validate reports whether the domain's fields are consistent with its kind.
func (d Domain) Validate() error {
	switch d.Kind {
	case KindFree, KindInteger:
		if d.Dim != 1 {
			return fmt.Errorf("%w: %s is scalar, dim %d", ErrBadDomain, d.Kind, d.Dim)
		}
	case KindLessThan:
		if d.Dim != 1 || math.IsNaN(d.Up) || math.IsInf(d.Up, 0) {
			return fmt.Errorf("%w: less-than needs a finite upper bound", ErrBadDomain)
		}
	case KindGreaterThan:
		if d.Dim != 1 || math.IsNaN(d.Lo) || math.IsInf(d.Lo, 0) {
			return fmt.Errorf("%w: greater-than needs a finite lower bound", ErrBadDomain)
		}
	case KindInterval:
		switch {
		case d.Dim != 1:
			return fmt.Errorf("%w: interval is scalar, dim %d", ErrBadDomain, d.Dim)
		case math.IsNaN(d.Lo) || math.IsNaN(d.Up):
			return fmt.Errorf("%w: interval bound is NaN", ErrBadDomain)
		case !(d.Lo <= d.Up):
			return fmt.Errorf("%w: interval bounds out of order [%g, %g]", ErrBadDomain, d.Lo, d.Up)
		case math.IsInf(d.Lo, 1) || math.IsInf(d.Up, -1):
			return fmt.Errorf("%w: interval bounds out of order [%g, %g]", ErrBadDomain, d.Lo, d.Up)
		}
	case KindEqualTo:
		if d.Dim != 1 || math.IsNaN(d.Lo) || math.IsInf(d.Lo, 0) || d.Lo != d.Up {
			return fmt.Errorf("%w: equal-to needs one finite value", ErrBadDomain)
		}
	case KindZeros, KindNonnegatives, KindNonpositives:
		if d.Dim < 1 {
			return fmt.Errorf("%w: %s needs dim >= 1, got %d", ErrBadDomain, d.Kind, d.Dim)
		}
	case KindQuad, KindGeoMean:
		if d.Dim < 2 {
			return fmt.Errorf("%w: %s needs dim >= 2, got %d", ErrBadDomain, d.Kind, d.Dim)
		}
	case KindRotatedQuad:
		if d.Dim < 3 {
			return fmt.Errorf("%w: rotated-quad needs dim >= 3, got %d", ErrBadDomain, d.Dim)
		}
	case KindExp, KindDualExp:
		if d.Dim != 3 {
			return fmt.Errorf("%w: %s has dim 3, got %d", ErrBadDomain, d.Kind, d.Dim)
		}
	case KindPow, KindDualPow:
		switch {
		case d.Dim != 3:
			return fmt.Errorf("%w: %s has dim 3, got %d", ErrBadDomain, d.Kind, d.Dim)
		case math.IsNaN(d.Par) || d.Par <= 0 || d.Par >= 1:
			return fmt.Errorf("%w: power exponent must satisfy 0 < a < 1, got %g", ErrBadDomain, d.Par)
		}
	case KindPSD:
		switch {
		case d.Order < 1:
			return fmt.Errorf("%w: psd needs side >= 1, got %d", ErrBadDomain, d.Order)
		case d.Dim != d.Order*(d.Order+1)/2:
			return fmt.Errorf("%w: psd packed dim %d does not match side %d", ErrBadDomain, d.Dim, d.Order)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrBadDomain, int(d.Kind))
	}
	return nil
}

// IsScalarBound reports whether the kind is one of the scalar bound domains.
func (d Domain) IsScalarBound() bool {
	switch d.Kind {
	case KindFree, KindLessThan, KindGreaterThan, KindInterval, KindEqualTo:
		return true
	}
	return false
}

// IsVectorBound reports whether the kind sets per-element bounds on a vector.
func (d Domain) IsVectorBound() bool {
	switch d.Kind {
	case KindZeros, KindNonnegatives, KindNonpositives:
		return true
	}
	return false
}

// IsCone reports whether the kind translates to an engine cone.
func (d Domain) IsCone() bool {
	switch d.Kind {
	case KindQuad, KindRotatedQuad, KindGeoMean, KindExp, KindDualExp, KindPow, KindDualPow:
		return true
	}
	return false
}

// IsMatrix reports whether the kind is the packed PSD matrix domain.
func (d Domain) IsMatrix() bool { return d.Kind == KindPSD }

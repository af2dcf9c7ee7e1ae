// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"fmt"
	"math"

	"github.com/curioloop/conelink/engine"
)

// ToBound translates a scalar or vector bound domain into an engine bound
// triple. Each element of a vector domain carries the same triple. Cone,
// matrix and integer kinds have no bound form.
func ToBound(d Domain) (engine.BoundKey, float64, float64, error) {
	if err := d.Validate(); err != nil {
		return engine.BoundFree, 0, 0, err
	}
	switch d.Kind {
	case KindFree:
		return engine.BoundFree, math.Inf(-1), math.Inf(1), nil
	case KindLessThan, KindNonpositives:
		return engine.BoundUpper, math.Inf(-1), d.Up, nil
	case KindGreaterThan, KindNonnegatives:
		return engine.BoundLower, d.Lo, math.Inf(1), nil
	case KindInterval:
		return engine.BoundRange, d.Lo, d.Up, nil
	case KindEqualTo:
		return engine.BoundFixed, d.Lo, d.Up, nil
	case KindZeros:
		return engine.BoundFixed, 0, 0, nil
	}
	return engine.BoundFree, 0, 0, fmt.Errorf("%w: %s", ErrNotBound, d.Kind)
}

// FromBound is the scalar read-back inverse of ToBound.
func FromBound(key engine.BoundKey, lo, up float64) Domain {
	switch key {
	case engine.BoundLower:
		return GreaterThan(lo)
	case engine.BoundUpper:
		return LessThan(up)
	case engine.BoundRange:
		return Interval(lo, up)
	case engine.BoundFixed:
		return EqualTo(lo)
	}
	return Free()
}

// Shift moves a bound pair by the affine constant k: a constraint with body
// b(x) + k in a domain with bounds [lo, up] puts [lo-k, up-k] on the engine
// row holding b(x). Infinite sides stay infinite.
func Shift(lo, up, k float64) (float64, float64) {
	return lo - k, up - k
}

// ToCone translates a cone domain into the engine cone family and parameter.
func ToCone(d Domain) (engine.ConeType, float64, error) {
	if err := d.Validate(); err != nil {
		return 0, 0, err
	}
	switch d.Kind {
	case KindQuad:
		return engine.ConeQuad, 0, nil
	case KindRotatedQuad:
		return engine.ConeRotatedQuad, 0, nil
	case KindGeoMean:
		return engine.ConeGeoMean, 0, nil
	case KindExp:
		return engine.ConePExp, 0, nil
	case KindDualExp:
		return engine.ConeDExp, 0, nil
	case KindPow:
		return engine.ConePPow, d.Par, nil
	case KindDualPow:
		return engine.ConeDPow, d.Par, nil
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrNotCone, d.Kind)
}

// Side names the half of a bound pair a scalar domain claims. LessThan
// claims the upper side, GreaterThan the lower, EqualTo and Interval both.
type Side int8

const (
	SideLower Side = iota
	SideUpper
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideLower:
		return "lower"
	case SideUpper:
		return "upper"
	case SideBoth:
		return "both"
	}
	return "unknown"
}

// ClaimedSide reports which bound side a bound domain claims. Vector kinds
// claim the same side on every member element.
func ClaimedSide(d Domain) (Side, error) {
	switch d.Kind {
	case KindGreaterThan, KindNonnegatives:
		return SideLower, nil
	case KindLessThan, KindNonpositives:
		return SideUpper, nil
	case KindEqualTo, KindInterval, KindZeros:
		return SideBoth, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotBound, d.Kind)
}

// Combine attaches one more scalar bound domain to an entry that already
// carries the bound triple (key, lo, up) and returns the upgraded triple.
// The lattice admits free → one side → range; a side can be claimed once,
// and two-sided states (range, fixed) admit nothing further.
func Combine(key engine.BoundKey, lo, up float64, d Domain) (engine.BoundKey, float64, float64, error) {
	if err := d.Validate(); err != nil {
		return key, lo, up, err
	}
	side, err := ClaimedSide(d)
	if err != nil {
		return key, lo, up, err
	}
	switch key {
	case engine.BoundFree:
		return ToBound(d)
	case engine.BoundLower:
		if side != SideUpper {
			return key, lo, up, fmt.Errorf("%w: %s over lower", ErrDuplicateBound, d.Kind)
		}
		return engine.BoundRange, lo, d.Up, nil
	case engine.BoundUpper:
		if side != SideLower {
			return key, lo, up, fmt.Errorf("%w: %s over upper", ErrDuplicateBound, d.Kind)
		}
		return engine.BoundRange, d.Lo, up, nil
	}
	return key, lo, up, fmt.Errorf("%w: %s over %s", ErrDuplicateBound, d.Kind, key)
}

// Drop detaches one claimed side from the bound triple and returns the
// downgraded triple. Dropping SideBoth undoes an EqualTo or Interval
// attachment; dropping one side of a range keeps the other.
func Drop(key engine.BoundKey, lo, up float64, side Side) (engine.BoundKey, float64, float64, error) {
	switch {
	case key == engine.BoundFixed && side == SideBoth,
		key == engine.BoundRange && side == SideBoth:
		return engine.BoundFree, math.Inf(-1), math.Inf(1), nil
	case key == engine.BoundLower && side == SideLower:
		return engine.BoundFree, math.Inf(-1), math.Inf(1), nil
	case key == engine.BoundUpper && side == SideUpper:
		return engine.BoundFree, math.Inf(-1), math.Inf(1), nil
	case key == engine.BoundRange && side == SideLower:
		return engine.BoundUpper, math.Inf(-1), up, nil
	case key == engine.BoundRange && side == SideUpper:
		return engine.BoundLower, lo, math.Inf(1), nil
	}
	return key, lo, up, fmt.Errorf("%w: %s from %s", ErrNoSuchBound, side, key)
}

// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

func TestAffineConstraintLifecycle(t *testing.T) {
	m := newLPModel(t)
	xs, err := m.AddVariables(2)
	require.NoError(t, err)

	con, err := m.AddConstraint(xs, []float64{1, 2}, 5, domain.Interval(0, 10))
	require.NoError(t, err)

	// The constant is folded into the engine row bounds.
	key, lo, up, err := m.Engine().GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundRange, key)
	assert.Equal(t, -5.0, lo)
	assert.Equal(t, 5.0, up)

	d, err := m.ConstraintDomain(con)
	require.NoError(t, err)
	assert.Equal(t, domain.KindInterval, d.Kind)
	assert.Equal(t, 0.0, d.Lo)
	assert.Equal(t, 10.0, d.Up)

	require.NoError(t, m.SetConstant(con, 7))
	_, lo, up, err = m.Engine().GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, -7.0, lo)
	assert.Equal(t, 3.0, up)

	require.NoError(t, m.SetDomain(con, domain.Interval(2, 12)))
	_, lo, up, err = m.Engine().GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, -5.0, lo)
	assert.Equal(t, 5.0, up)

	err = m.SetDomain(con, domain.LessThan(1))
	assert.ErrorIs(t, err, ErrDomainMismatch)

	require.NoError(t, m.SetCoefficient(con, xs[1], 4))
	rows, vals, err := m.Engine().GetColCoeffs(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows)
	assert.Equal(t, []float64{4}, vals)

	require.NoError(t, m.DeleteConstraint(con))
	key, lo, up, err = m.Engine().GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundFixed, key)
	assert.Zero(t, lo)
	assert.Zero(t, up)
	rows, _, err = m.Engine().GetColCoeffs(0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = m.ConstraintDomain(con)
	assert.ErrorIs(t, err, ErrInvalidReference)

	// The freed row position is reused without growing the engine.
	con2, err := m.AddConstraint(xs, []float64{1, 1}, 0, domain.LessThan(3))
	require.NoError(t, err)
	assert.NotEqual(t, con, con2)
	assert.Equal(t, 1, m.Engine().NumRows())
}

func TestAffineConstraintRejects(t *testing.T) {
	m := newLPModel(t)
	x, err := m.AddVariable()
	require.NoError(t, err)

	_, err = m.AddConstraint([]VarID{x}, []float64{1, 2}, 0, domain.LessThan(1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = m.AddConstraint([]VarID{x}, []float64{1}, 0, domain.Quad(3))
	assert.ErrorIs(t, err, ErrIncompatibleDomain)

	_, err = m.AddConstraint([]VarID{x}, []float64{1}, 0, domain.Integer())
	assert.ErrorIs(t, err, ErrIncompatibleDomain)

	_, err = m.AddConstraint([]VarID{VarID(42)}, []float64{1}, 0, domain.LessThan(1))
	assert.ErrorIs(t, err, ErrInvalidReference)

	// Nothing leaked into the engine from the failed adds.
	assert.Equal(t, 0, m.Engine().NumRows())
}

func TestAffineDuplicateTermsSum(t *testing.T) {
	m := newLPModel(t)
	x, err := m.AddVariable()
	require.NoError(t, err)

	_, err = m.AddConstraint([]VarID{x, x}, []float64{1, 2}, 0, domain.EqualTo(3))
	require.NoError(t, err)

	rows, vals, err := m.Engine().GetColCoeffs(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows)
	assert.Equal(t, []float64{3}, vals)
}

func TestVectorConstraint(t *testing.T) {
	m := newLPModel(t)
	xs, err := m.AddVariables(2)
	require.NoError(t, err)

	con, err := m.AddVectorConstraint(
		[][]VarID{{xs[0]}, {xs[1]}, {xs[0], xs[1]}},
		[][]float64{{1}, {1}, {1, 1}},
		[]float64{0, 0, -1},
		domain.Nonnegatives(3))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Engine().NumRows())

	key, lo, up, err := m.Engine().GetRowBound(2)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundLower, key)
	assert.Equal(t, 1.0, lo)
	assert.True(t, math.IsInf(up, 1))

	require.NoError(t, m.SetConstants(con, []float64{1, 1, 0}))
	_, lo, _, err = m.Engine().GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)
	_, lo, _, err = m.Engine().GetRowBound(2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)

	err = m.SetConstants(con, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	err = m.SetConstant(con, 1)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	err = m.SetCoefficient(con, xs[0], 2)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	require.NoError(t, m.DeleteConstraint(con))
	for i := 0; i < 3; i++ {
		key, _, _, err := m.Engine().GetRowBound(i)
		require.NoError(t, err)
		assert.Equal(t, engine.BoundFixed, key)
	}

	// A smaller block reuses the freed run instead of growing.
	_, err = m.AddVectorConstraint(
		[][]VarID{{xs[0]}, {xs[1]}},
		[][]float64{{1}, {1}},
		[]float64{0, 0},
		domain.Nonpositives(2))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Engine().NumRows())
	for i := 0; i < 2; i++ {
		key, _, up, err := m.Engine().GetRowBound(i)
		require.NoError(t, err)
		assert.Equal(t, engine.BoundUpper, key)
		assert.Zero(t, up)
	}
	key, _, _, err = m.Engine().GetRowBound(2)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundFixed, key)
}

func TestVectorConstraintRejects(t *testing.T) {
	m := newLPModel(t)
	xs, err := m.AddVariables(2)
	require.NoError(t, err)

	_, err = m.AddVectorConstraint(
		[][]VarID{{xs[0]}}, [][]float64{{1}}, []float64{0},
		domain.Quad(3))
	assert.ErrorIs(t, err, ErrIncompatibleDomain)

	_, err = m.AddVectorConstraint(
		[][]VarID{{xs[0]}}, [][]float64{{1}}, []float64{0},
		domain.LessThan(1))
	assert.ErrorIs(t, err, ErrIncompatibleDomain)

	_, err = m.AddVectorConstraint(
		[][]VarID{{xs[0]}, {xs[1]}}, [][]float64{{1}, {1}}, []float64{0},
		domain.Nonnegatives(2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = m.AddVectorConstraint(
		[][]VarID{{xs[0]}, {xs[1]}}, [][]float64{{1}, {1, 2}}, []float64{0, 0},
		domain.Nonnegatives(2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	assert.Equal(t, 0, m.Engine().NumRows())
}

func TestConeDomainSwap(t *testing.T) {
	m := newLPModel(t)
	xs, err := m.AddVariables(3)
	require.NoError(t, err)

	con, err := m.AddVariableVectorConstraint(xs, domain.Pow(0.25))
	require.NoError(t, err)

	require.NoError(t, m.SetDomain(con, domain.Pow(0.75)))
	d, err := m.ConstraintDomain(con)
	require.NoError(t, err)
	assert.Equal(t, 0.75, d.Par)

	// The old engine cone is dead, the replacement carries the parameter.
	_, _, _, err = m.Engine().GetCone(0)
	assert.ErrorIs(t, err, engine.ErrDeadCone)
	ct, par, _, err := m.Engine().GetCone(1)
	require.NoError(t, err)
	assert.Equal(t, engine.ConePPow, ct)
	assert.Equal(t, 0.75, par)

	err = m.SetDomain(con, domain.DualPow(0.5))
	assert.ErrorIs(t, err, ErrDomainMismatch)

	// Membership survives the swap.
	err = m.DeleteVariable(xs[0])
	assert.ErrorIs(t, err, ErrVariableInCone)
	require.NoError(t, m.DeleteConstraint(con))
	require.NoError(t, m.DeleteVariable(xs[0]))
}

func TestVariableBoundDomainSwap(t *testing.T) {
	m := newLPModel(t)
	x, err := m.AddVariable()
	require.NoError(t, err)

	up, err := m.AddVariableConstraint(x, domain.LessThan(5))
	require.NoError(t, err)
	_, err = m.AddVariableConstraint(x, domain.GreaterThan(1))
	require.NoError(t, err)

	// Swapping the upper attachment leaves the lower side alone.
	require.NoError(t, m.SetDomain(up, domain.LessThan(9)))
	d, err := m.VariableBounds(x)
	require.NoError(t, err)
	assert.Equal(t, domain.KindInterval, d.Kind)
	assert.Equal(t, 1.0, d.Lo)
	assert.Equal(t, 9.0, d.Up)
}

// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simlp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/conelink/engine"
)

func TestAppendAndBounds(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(3))
	require.NoError(t, e.AppendRows(2))
	assert.Equal(t, 3, e.NumCols())
	assert.Equal(t, 2, e.NumRows())

	require.NoError(t, e.PutColBound(1, engine.BoundRange, -1, 4))
	key, lo, up, err := e.GetColBound(1)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundRange, key)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 4.0, up)

	// Fresh columns are free.
	key, lo, up, err = e.GetColBound(0)
	require.NoError(t, err)
	assert.Equal(t, engine.BoundFree, key)
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(up, 1))

	// Open sides are normalized to infinities.
	require.NoError(t, e.PutRowBound(0, engine.BoundLower, 2, 99))
	_, lo, up, err = e.GetRowBound(0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, lo)
	assert.True(t, math.IsInf(up, 1))

	assert.ErrorIs(t, e.PutColBound(7, engine.BoundFree, 0, 0), engine.ErrIndexRange)
	assert.ErrorIs(t, e.PutColBound(0, engine.BoundRange, 4, -1), engine.ErrBadBound)
	assert.ErrorIs(t, e.PutColBound(0, engine.BoundFixed, 1, 2), engine.ErrBadBound)
	assert.ErrorIs(t, e.PutRowBound(0, engine.BoundLower, math.Inf(-1), 0), engine.ErrBadBound)
	assert.ErrorIs(t, e.PutRowBound(0, engine.BoundUpper, 0, math.NaN()), engine.ErrBadBound)
}

func TestCoefficients(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(3))
	require.NoError(t, e.AppendRows(2))

	require.NoError(t, e.PutRowCoeffs(0, []int{0, 2}, []float64{1, 2}))
	require.NoError(t, e.PutCoeff(1, 2, 5))

	rows, vals, err := e.GetColCoeffs(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rows)
	assert.Equal(t, []float64{2, 5}, vals)

	// Zero coefficient removes the entry.
	require.NoError(t, e.PutCoeff(0, 2, 0))
	rows, vals, err = e.GetColCoeffs(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rows)
	assert.Equal(t, []float64{5}, vals)

	// Replacing a row drops what it held before.
	require.NoError(t, e.PutRowCoeffs(1, []int{1}, []float64{3}))
	rows, _, err = e.GetColCoeffs(2)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, e.ClearRow(1))
	rows, _, err = e.GetColCoeffs(1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, e.PutRowCoeffs(0, []int{0, 1}, []float64{1, 1}))
	require.NoError(t, e.ClearCol(0))
	rows, vals, err = e.GetColCoeffs(0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, vals, err = e.GetColCoeffs(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows)
	assert.Equal(t, []float64{1}, vals)

	assert.ErrorIs(t, e.PutRowCoeffs(0, []int{0}, []float64{1, 2}), engine.ErrLenMismatch)
	assert.ErrorIs(t, e.PutCoeff(5, 0, 1), engine.ErrIndexRange)
	assert.ErrorIs(t, e.PutCoeff(0, 5, 1), engine.ErrIndexRange)
}

func TestConeBookkeeping(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(5))

	id, err := e.AppendCone(engine.ConeQuad, 0, []int{0, 1, 2})
	require.NoError(t, err)

	ct, par, members, err := e.GetCone(id)
	require.NoError(t, err)
	assert.Equal(t, engine.ConeQuad, ct)
	assert.Equal(t, 0.0, par)
	assert.Equal(t, []int{0, 1, 2}, members)

	// One live cone per column.
	_, err = e.AppendCone(engine.ConeRotatedQuad, 0, []int{2, 3, 4})
	assert.ErrorIs(t, err, engine.ErrConeOverlap)
	_, err = e.AppendCone(engine.ConeQuad, 0, []int{3, 3, 4})
	assert.ErrorIs(t, err, engine.ErrConeOverlap)

	// Nullifying frees the members and tombstones the index.
	require.NoError(t, e.NullifyCone(id))
	_, _, _, err = e.GetCone(id)
	assert.ErrorIs(t, err, engine.ErrDeadCone)
	assert.ErrorIs(t, e.NullifyCone(id), engine.ErrDeadCone)

	id2, err := e.AppendCone(engine.ConePPow, 0.4, []int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, id2, "cone indices are not reused")

	_, err = e.AppendCone(engine.ConeQuad, 0, nil)
	assert.ErrorIs(t, err, engine.ErrIndexRange)
}

func TestBarBookkeeping(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendRows(1))

	blk, err := e.AppendBarBlock(3)
	require.NoError(t, err)
	require.NoError(t, e.PutBarC(blk, 0, 1.5))
	require.NoError(t, e.PutBarA(0, blk, 5, 2.0))

	assert.ErrorIs(t, e.PutBarC(blk, 6, 1), engine.ErrIndexRange, "offset past the packed triangle")
	assert.ErrorIs(t, e.PutBarA(0, blk+1, 0, 1), engine.ErrIndexRange)
	assert.ErrorIs(t, e.PutBarA(3, blk, 0, 1), engine.ErrIndexRange)
	_, err = e.AppendBarBlock(0)
	assert.ErrorIs(t, err, engine.ErrIndexRange)
}

func TestParams(t *testing.T) {
	e := New()
	require.NoError(t, e.PutParam(ParamTolerance, engine.FloatParam(1e-8)))
	require.NoError(t, e.PutParam(ParamMaxNodes, engine.IntParam(50)))
	require.NoError(t, e.PutParam(ParamTimeLimit, engine.FloatParam(1.5)))

	assert.ErrorIs(t, e.PutParam("no.such.param", engine.IntParam(1)), engine.ErrUnknownParam)
	assert.ErrorIs(t, e.PutParam(ParamTolerance, engine.IntParam(1)), engine.ErrUnknownParam)
	assert.ErrorIs(t, e.PutParam(ParamMaxNodes, engine.IntParam(0)), engine.ErrUnknownParam)
	assert.ErrorIs(t, e.PutParam(ParamTimeLimit, engine.FloatParam(-1)), engine.ErrUnknownParam)
}

// buildLP writes max 2x + y subject to x + y <= 4, 0 <= x <= 3, 0 <= y <= 2
// as a minimization of -2x - y. The unique optimum is x = 3, y = 1.
func buildLP(t *testing.T) *Engine {
	t.Helper()
	e := New()
	require.NoError(t, e.AppendCols(2))
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutColBound(0, engine.BoundRange, 0, 3))
	require.NoError(t, e.PutColBound(1, engine.BoundRange, 0, 2))
	require.NoError(t, e.PutRowCoeffs(0, []int{0, 1}, []float64{1, 1}))
	require.NoError(t, e.PutRowBound(0, engine.BoundUpper, 0, 4))
	require.NoError(t, e.PutCj(0, -2))
	require.NoError(t, e.PutCj(1, -1))
	return e
}

func TestSolveLP(t *testing.T) {
	e := buildLP(t)
	code, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, engine.TermSuccess, code)

	require.True(t, e.HasSolution(engine.SolBasic))
	require.True(t, e.HasSolution(engine.SolInterior))
	require.False(t, e.HasSolution(engine.SolInteger))

	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOptimal, sol.Status)
	assert.InDelta(t, 3.0, sol.ColPrimal[0], 1e-6)
	assert.InDelta(t, 1.0, sol.ColPrimal[1], 1e-6)
	assert.InDelta(t, -7.0, sol.PrimalObj, 1e-6)
	assert.InDelta(t, 4.0, sol.RowPrimal[0], 1e-6)

	assert.Equal(t, engine.KeyAtUpper, sol.ColStat[0])
	assert.Equal(t, engine.KeyAtUpper, sol.RowStat[0])
	assert.Equal(t, engine.KeyBasic, sol.ColStat[1])

	// Reference duals are zeros, present for the continuous kinds.
	assert.Equal(t, []float64{0, 0}, sol.ColDual)
	assert.Equal(t, []float64{0}, sol.RowDual)

	itr, err := e.Solution(engine.SolInterior)
	require.NoError(t, err)
	assert.Empty(t, itr.ColStat, "interior kind carries no status keys")
	assert.InDelta(t, -7.0, itr.PrimalObj, 1e-6)
}

func TestSolveMaximize(t *testing.T) {
	e := buildLP(t)
	require.NoError(t, e.PutCj(0, 2))
	require.NoError(t, e.PutCj(1, 1))
	e.PutSense(engine.Maximize)
	e.PutCFix(10)

	_, err := e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.InDelta(t, 17.0, sol.PrimalObj, 1e-6, "7 from the body plus the fixed term")
	assert.InDelta(t, 3.0, sol.ColPrimal[0], 1e-6)
}

func TestSolveResolvesAfterEdit(t *testing.T) {
	e := buildLP(t)
	_, err := e.Solve()
	require.NoError(t, err)

	// Tighten the row and solve again on the same handle.
	require.NoError(t, e.PutRowBound(0, engine.BoundUpper, 0, 2))
	_, err = e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.InDelta(t, -4.0, sol.PrimalObj, 1e-6, "x = 2, y = 0")
}

func TestSolveInfeasible(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(1))
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutColBound(0, engine.BoundRange, 0, 1))
	require.NoError(t, e.PutRowCoeffs(0, []int{0}, []float64{1}))
	require.NoError(t, e.PutRowBound(0, engine.BoundFixed, 3, 3))

	code, err := e.Solve()
	require.NoError(t, err, "infeasibility is a status, not an error")
	assert.Equal(t, engine.TermSuccess, code)

	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPrimalInfeasibleCert, sol.Status)
	assert.False(t, e.HasSolution(engine.SolInterior))
}

func TestSolveUnbounded(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(1))
	require.NoError(t, e.PutColBound(0, engine.BoundLower, 0, 0))
	require.NoError(t, e.PutCj(0, 1))
	e.PutSense(engine.Maximize)

	_, err := e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusDualInfeasibleCert, sol.Status)
}

func TestSolveUnconstrainedColumnWithCost(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(1))
	require.NoError(t, e.PutCj(0, 1))

	_, err := e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusDualInfeasibleCert, sol.Status)
}

func TestSolveEmptyRowInfeasible(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutRowBound(0, engine.BoundFixed, 1, 1))

	_, err := e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPrimalInfeasibleCert, sol.Status)
}

func TestSolveIgnoresClearedFixedRow(t *testing.T) {
	e := buildLP(t)
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutRowCoeffs(1, []int{0, 1}, []float64{1, -1}))
	require.NoError(t, e.PutRowBound(1, engine.BoundFixed, 9, 9))

	// Blank the extra row the way the layer above retires one.
	require.NoError(t, e.ClearRow(1))
	require.NoError(t, e.PutRowBound(1, engine.BoundFixed, 0, 0))

	_, err := e.Solve()
	require.NoError(t, err)
	sol, err := e.Solution(engine.SolBasic)
	require.NoError(t, err)
	assert.InDelta(t, -7.0, sol.PrimalObj, 1e-6)
	assert.InDelta(t, 0.0, sol.RowPrimal[1], 1e-12)
}

func TestSolveMILP(t *testing.T) {
	// max x + y subject to 2x + 2y <= 5, x, y >= 0 integer.
	// The relaxation peaks at 2.5; the best integral objective is 2.
	e := New()
	require.NoError(t, e.AppendCols(2))
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutColBound(0, engine.BoundLower, 0, 0))
	require.NoError(t, e.PutColBound(1, engine.BoundLower, 0, 0))
	require.NoError(t, e.PutColInteger(0, true))
	require.NoError(t, e.PutColInteger(1, true))
	require.NoError(t, e.PutRowCoeffs(0, []int{0, 1}, []float64{2, 2}))
	require.NoError(t, e.PutRowBound(0, engine.BoundUpper, 0, 5))
	require.NoError(t, e.PutCj(0, 1))
	require.NoError(t, e.PutCj(1, 1))
	e.PutSense(engine.Maximize)

	code, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, engine.TermSuccess, code)

	sol, err := e.Solution(engine.SolInteger)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.PrimalObj, 1e-6)
	for j, v := range sol.ColPrimal {
		assert.Equal(t, math.Round(v), v, "column %d is integral", j)
	}
	assert.Empty(t, sol.ColDual, "integer kind has no duals")
	assert.Empty(t, sol.RowDual)

	root, err := e.Solution(engine.SolInterior)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusUnknown, root.Status)
	assert.InDelta(t, 2.5, root.PrimalObj, 1e-6)
}

func TestSolveMILPNodeLimit(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(2))
	require.NoError(t, e.AppendRows(1))
	require.NoError(t, e.PutColBound(0, engine.BoundLower, 0, 0))
	require.NoError(t, e.PutColBound(1, engine.BoundLower, 0, 0))
	require.NoError(t, e.PutColInteger(0, true))
	require.NoError(t, e.PutColInteger(1, true))
	require.NoError(t, e.PutRowCoeffs(0, []int{0, 1}, []float64{2, 2}))
	require.NoError(t, e.PutRowBound(0, engine.BoundUpper, 0, 5))
	require.NoError(t, e.PutCj(0, 1))
	require.NoError(t, e.PutCj(1, 1))
	e.PutSense(engine.Maximize)
	require.NoError(t, e.PutParam(ParamMaxNodes, engine.IntParam(1)))

	code, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, engine.TermIterationLimit, code)
	assert.True(t, e.HasSolution(engine.SolInterior), "the relaxation is still published")
}

func TestSolveRejectsConicContent(t *testing.T) {
	e := buildLP(t)
	id, err := e.AppendCone(engine.ConeQuad, 0, []int{0, 1})
	require.NoError(t, err)

	_, err = e.Solve()
	assert.ErrorIs(t, err, ErrConicUnsupported)

	// A nullified cone no longer blocks the solve.
	require.NoError(t, e.NullifyCone(id))
	_, err = e.Solve()
	assert.NoError(t, err)

	// Matrix blocks block it for good.
	_, err = e.AppendBarBlock(2)
	require.NoError(t, err)
	_, err = e.Solve()
	assert.ErrorIs(t, err, ErrConicUnsupported)
}

func TestClosedEngine(t *testing.T) {
	e := New()
	require.NoError(t, e.AppendCols(1))
	require.NoError(t, e.Close())

	assert.ErrorIs(t, e.AppendCols(1), ErrClosed)
	assert.ErrorIs(t, e.PutCj(0, 1), ErrClosed)
	_, err := e.Solve()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = e.Solution(engine.SolBasic)
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, e.HasSolution(engine.SolBasic))
}

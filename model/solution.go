// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

// solSnap is one engine solution captured at Solve time. Snapshots outlive
// later model edits, so reads through entities created afterwards fail
// rather than alias fresh positions.
type solSnap struct {
	kind engine.SolType
	raw  engine.RawSolution
}

func kindRank(t engine.SolType) int {
	switch t {
	case engine.SolInteger:
		return 2
	case engine.SolBasic:
		return 1
	}
	return 0
}

// Solution summarizes one published solution.
type Solution struct {
	Kind      engine.SolType
	Status    engine.SolStatus
	PrimalObj float64
	DualObj   float64
}

// Report is the outcome of one Solve. Solutions are ranked best first:
// proven optimal before the rest, then integer before basic before interior.
type Report struct {
	Term      engine.TermCode
	Solutions []Solution
}

// Best returns the top-ranked solution, if any was published.
func (r *Report) Best() (Solution, bool) {
	if len(r.Solutions) == 0 {
		return Solution{}, false
	}
	return r.Solutions[0], true
}

func (m *Model) report() *Report {
	sols := make([]Solution, len(m.sols))
	for i := range m.sols {
		sols[i] = m.summary(i)
	}
	return &Report{Term: m.term, Solutions: sols}
}

func (m *Model) summary(k int) Solution {
	snap := &m.sols[k]
	return Solution{
		Kind:      snap.kind,
		Status:    snap.raw.Status,
		PrimalObj: snap.raw.PrimalObj,
		DualObj:   snap.raw.DualObj,
	}
}

// NumSolutions reports how many solutions the last Solve published.
func (m *Model) NumSolutions() int { return len(m.sols) }

// SolutionInfo summarizes the k-th ranked solution of the last Solve.
func (m *Model) SolutionInfo(k int) (Solution, error) {
	if _, err := m.snapshot(k); err != nil {
		return Solution{}, err
	}
	return m.summary(k), nil
}

func (m *Model) snapshot(k int) (*solSnap, error) {
	if k < 0 || k >= len(m.sols) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoSolution, k, len(m.sols))
	}
	return &m.sols[k], nil
}

// Value reads the primal value of a variable from the k-th ranked solution.
func (m *Model) Value(v VarID, k int) (float64, error) {
	snap, err := m.snapshot(k)
	if err != nil {
		return 0, err
	}
	rec, err := m.variable(v)
	if err != nil {
		return 0, err
	}
	return m.primalOf(snap, rec)
}

func (m *Model) primalOf(snap *solSnap, rec *varRec) (float64, error) {
	if rec.matrix {
		return barEntry(snap.raw.BarPrimal, rec.block, rec.off, rec.dim)
	}
	j := m.column(rec)
	if j >= len(snap.raw.ColPrimal) {
		return 0, fmt.Errorf("%w: solution predates column %d", ErrNoSolution, j)
	}
	return snap.raw.ColPrimal[j], nil
}

// ConstraintValue reads the primal activity of a constraint from the k-th
// ranked solution, one entry per row or member. Affine activities include
// the constant term.
func (m *Model) ConstraintValue(c ConID, k int) ([]float64, error) {
	snap, err := m.snapshot(k)
	if err != nil {
		return nil, err
	}
	rec, err := m.constraint(c)
	if err != nil {
		return nil, err
	}
	switch rec.kind {
	case conAffine, conAffineVec:
		out := make([]float64, len(rec.consts))
		for r := range rec.consts {
			i := m.rows.Resolve(rec.rows, r)
			if i >= len(snap.raw.RowPrimal) {
				return nil, fmt.Errorf("%w: solution predates row %d", ErrNoSolution, i)
			}
			out[r] = snap.raw.RowPrimal[i] + rec.consts[r]
		}
		return out, nil
	default:
		out := make([]float64, len(rec.vars))
		for t, v := range rec.vars {
			val, err := m.primalOf(snap, &m.vars[v-1])
			if err != nil {
				return nil, err
			}
			out[t] = val
		}
		return out, nil
	}
}

// Dual reads the dual of a constraint from the k-th ranked solution, one
// entry per row or member. Solution kinds that carry no duals, such as
// integer solutions, fail with ErrDualUnavailable.
func (m *Model) Dual(c ConID, k int) ([]float64, error) {
	snap, err := m.snapshot(k)
	if err != nil {
		return nil, err
	}
	rec, err := m.constraint(c)
	if err != nil {
		return nil, err
	}
	switch rec.kind {
	case conAffine, conAffineVec:
		if len(snap.raw.RowDual) == 0 && len(snap.raw.RowPrimal) > 0 {
			return nil, fmt.Errorf("%w: %v solution", ErrDualUnavailable, snap.kind)
		}
		out := make([]float64, len(rec.consts))
		for r := range rec.consts {
			i := m.rows.Resolve(rec.rows, r)
			if i >= len(snap.raw.RowDual) {
				return nil, fmt.Errorf("%w: solution predates row %d", ErrNoSolution, i)
			}
			out[r] = snap.raw.RowDual[i]
		}
		return out, nil
	default:
		out := make([]float64, len(rec.vars))
		for t, v := range rec.vars {
			val, err := m.dualOf(snap, &m.vars[v-1])
			if err != nil {
				return nil, err
			}
			out[t] = val
		}
		return out, nil
	}
}

// VariableDual reads the reduced cost of a variable from the k-th ranked
// solution.
func (m *Model) VariableDual(v VarID, k int) (float64, error) {
	snap, err := m.snapshot(k)
	if err != nil {
		return 0, err
	}
	rec, err := m.variable(v)
	if err != nil {
		return 0, err
	}
	return m.dualOf(snap, rec)
}

func (m *Model) dualOf(snap *solSnap, rec *varRec) (float64, error) {
	if rec.matrix {
		if len(snap.raw.BarDual) == 0 && len(snap.raw.BarPrimal) > 0 {
			return 0, fmt.Errorf("%w: %v solution", ErrDualUnavailable, snap.kind)
		}
		return barEntry(snap.raw.BarDual, rec.block, rec.off, rec.dim)
	}
	if len(snap.raw.ColDual) == 0 && len(snap.raw.ColPrimal) > 0 {
		return 0, fmt.Errorf("%w: %v solution", ErrDualUnavailable, snap.kind)
	}
	j := m.column(rec)
	if j >= len(snap.raw.ColDual) {
		return 0, fmt.Errorf("%w: solution predates column %d", ErrNoSolution, j)
	}
	return snap.raw.ColDual[j], nil
}

// barEntry reads a packed matrix entry, translating the caller-order offset
// into the engine's packing.
func barEntry(bars [][]float64, block, off, dim int) (float64, error) {
	if block >= len(bars) {
		return 0, fmt.Errorf("%w: solution predates matrix block %d", ErrNoSolution, block)
	}
	k := domain.TriToEngine(off, dim)
	vals := bars[block]
	if k >= len(vals) {
		return 0, fmt.Errorf("%w: matrix block %d entry %d", ErrNoSolution, block, k)
	}
	return vals[k], nil
}

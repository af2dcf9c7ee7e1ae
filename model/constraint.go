// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"sort"

	"github.com/curioloop/conelink/arena"
	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

type conKind int8

const (
	conAffine     conKind = iota // one engine row
	conAffineVec                 // a block of engine rows
	conVarScalar                 // bound or integrality on one variable
	conVarVec                    // one bound side on each member
	conCone                      // engine cone over member columns
	conMatrixCone                // bar block holding the members
)

// conRec tracks one constraint. The record index plus one equals the ConID.
type conRec struct {
	kind conKind
	live bool
	dom  domain.Domain
	side domain.Side // bound side claimed by conVarScalar and conVarVec

	rows   arena.BlockID // affine kinds
	consts []float64     // per-row constants for affine kinds

	vars []VarID // members, in caller order

	cone  int // engine cone id for conCone
	block int // engine bar block for conMatrixCone
}

func (m *Model) newCon(rec conRec) ConID {
	rec.live = true
	m.cons = append(m.cons, rec)
	return ConID(len(m.cons))
}

// AddConstraint adds the scalar affine constraint
//
//	sum(coeffs[k]*vs[k]) + constant in d
//
// where d is a scalar bound domain. Terms on matrix elements are routed to
// the bar part of the row. Repeated variables have their coefficients summed.
func (m *Model) AddConstraint(vs []VarID, coeffs []float64, constant float64, d domain.Domain) (ConID, error) {
	if len(vs) != len(coeffs) {
		return 0, fmt.Errorf("%w: %d variables, %d coefficients", ErrDimensionMismatch, len(vs), len(coeffs))
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if !d.IsScalarBound() {
		return 0, fmt.Errorf("%w: %v on a scalar constraint", ErrIncompatibleDomain, d.Kind)
	}
	terms, err := m.collectTerms(vs, coeffs)
	if err != nil {
		return 0, err
	}

	blk, i, err := m.newRows(1)
	if err != nil {
		return 0, err
	}
	if err := m.writeRow(i, terms); err != nil {
		return 0, err
	}
	key, dlo, dup, err := domain.ToBound(d)
	if err != nil {
		return 0, err
	}
	lo, up := domain.Shift(dlo, dup, constant)
	if err := m.eng.PutRowBound(i, key, lo, up); err != nil {
		return 0, fmt.Errorf("model: row bound: %w", err)
	}
	return m.newCon(conRec{kind: conAffine, dom: d, rows: blk, consts: []float64{constant}}), nil
}

// AddVectorConstraint adds one affine constraint per entry of a vector bound
// domain. Row r is sum(coeffs[r][k]*vs[r][k]) + constants[r], restricted to
// the scalar domain the vector domain imposes elementwise. The rows live in
// one contiguous block and share one constraint id.
func (m *Model) AddVectorConstraint(vs [][]VarID, coeffs [][]float64, constants []float64, d domain.Domain) (ConID, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if !d.IsVectorBound() {
		return 0, fmt.Errorf("%w: %v on a vector constraint", ErrIncompatibleDomain, d.Kind)
	}
	if len(vs) != d.Dim || len(coeffs) != d.Dim || len(constants) != d.Dim {
		return 0, fmt.Errorf("%w: domain dim %d, got %d/%d/%d rows",
			ErrDimensionMismatch, d.Dim, len(vs), len(coeffs), len(constants))
	}
	terms := make([]rowTerms, d.Dim)
	for r := range vs {
		t, err := m.collectTerms(vs[r], coeffs[r])
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", r, err)
		}
		terms[r] = t
	}

	blk, first, err := m.newRows(d.Dim)
	if err != nil {
		return 0, err
	}
	elem := memberDomain(d)
	key, dlo, dup, err := domain.ToBound(elem)
	if err != nil {
		return 0, err
	}
	for r := 0; r < d.Dim; r++ {
		i := first + r
		if err := m.writeRow(i, terms[r]); err != nil {
			return 0, err
		}
		lo, up := domain.Shift(dlo, dup, constants[r])
		if err := m.eng.PutRowBound(i, key, lo, up); err != nil {
			return 0, fmt.Errorf("model: row bound: %w", err)
		}
	}
	return m.newCon(conRec{
		kind:   conAffineVec,
		dom:    d,
		rows:   blk,
		consts: append([]float64(nil), constants...),
	}), nil
}

// newRows allocates a block of n engine rows and returns the block id and
// the position of its first row. Contiguity holds at allocation time only.
func (m *Model) newRows(n int) (arena.BlockID, int, error) {
	grow := m.rows.EnsureCapacity(n)
	if grow > 0 {
		if err := m.eng.AppendRows(grow); err != nil {
			return arena.None, 0, fmt.Errorf("model: append rows: %w", err)
		}
	}
	blk := m.rows.NewBlock(n)
	return blk, m.rows.Resolve(blk, 0), nil
}

// DeleteConstraint removes a constraint. Affine rows are blanked, fixed at
// zero, and their positions released. Variable bounds are dropped from the
// member columns. Cones are nullified in place. Matrix-cone constraints
// cannot be deleted.
func (m *Model) DeleteConstraint(c ConID) error {
	rec, err := m.constraint(c)
	if err != nil {
		return err
	}
	switch rec.kind {
	case conAffine, conAffineVec:
		n := m.rows.BlockLen(rec.rows)
		for r := 0; r < n; r++ {
			i := m.rows.Resolve(rec.rows, r)
			if err := m.eng.ClearRow(i); err != nil {
				return fmt.Errorf("model: clear row: %w", err)
			}
			if err := m.eng.PutRowBound(i, engine.BoundFixed, 0, 0); err != nil {
				return fmt.Errorf("model: blank row: %w", err)
			}
		}
		if err := m.rows.DeleteBlock(rec.rows); err != nil {
			return fmt.Errorf("model: release rows: %w", err)
		}

	case conVarScalar:
		rec2 := &m.vars[rec.vars[0]-1]
		if rec.dom.Kind == domain.KindInteger {
			if err := m.eng.PutColInteger(m.column(rec2), false); err != nil {
				return fmt.Errorf("model: integer unmark: %w", err)
			}
			rec2.intBy = 0
		} else {
			if err := m.dropSide(rec2, rec.side); err != nil {
				return err
			}
		}

	case conVarVec:
		for _, v := range rec.vars {
			if err := m.dropSide(&m.vars[v-1], rec.side); err != nil {
				return err
			}
		}

	case conCone:
		if err := m.eng.NullifyCone(rec.cone); err != nil {
			return fmt.Errorf("model: nullify cone: %w", err)
		}
		for _, v := range rec.vars {
			m.vars[v-1].cone = 0
		}

	case conMatrixCone:
		return fmt.Errorf("%w: delete matrix constraint %d", ErrUnsupportedOperation, c)
	}
	rec.live = false
	return nil
}

// dropSide removes one claimed bound side from a variable's column and
// clears the matching claim slots.
func (m *Model) dropSide(rec *varRec, side domain.Side) error {
	j := m.column(rec)
	key, lo, up, err := m.eng.GetColBound(j)
	if err != nil {
		return fmt.Errorf("model: read bound: %w", err)
	}
	nk, nlo, nup, err := domain.Drop(key, lo, up, side)
	if err != nil {
		return fmt.Errorf("model: drop bound: %w", err)
	}
	if err := m.eng.PutColBound(j, nk, nlo, nup); err != nil {
		return fmt.Errorf("model: write bound: %w", err)
	}
	if side != domain.SideUpper {
		rec.lowerBy = 0
	}
	if side != domain.SideLower {
		rec.upperBy = 0
	}
	return nil
}

// SetDomain replaces the domain of a constraint with one of the same kind
// and shape. Bound values are retranslated; a parameterized cone is
// re-registered with the engine.
func (m *Model) SetDomain(c ConID, d domain.Domain) error {
	rec, err := m.constraint(c)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Kind != rec.dom.Kind || d.Dim != rec.dom.Dim || d.Order != rec.dom.Order {
		return fmt.Errorf("%w: %v(dim %d) replacing %v(dim %d)",
			ErrDomainMismatch, d.Kind, d.Dim, rec.dom.Kind, rec.dom.Dim)
	}

	switch rec.kind {
	case conAffine, conAffineVec:
		elem := d
		if rec.kind == conAffineVec {
			elem = memberDomain(d)
		}
		key, dlo, dup, err := domain.ToBound(elem)
		if err != nil {
			return err
		}
		for r := range rec.consts {
			i := m.rows.Resolve(rec.rows, r)
			lo, up := domain.Shift(dlo, dup, rec.consts[r])
			if err := m.eng.PutRowBound(i, key, lo, up); err != nil {
				return fmt.Errorf("model: row bound: %w", err)
			}
		}

	case conVarScalar:
		if d.Kind != domain.KindInteger {
			vrec := &m.vars[rec.vars[0]-1]
			j := m.column(vrec)
			key, lo, up, err := m.eng.GetColBound(j)
			if err != nil {
				return fmt.Errorf("model: read bound: %w", err)
			}
			_, dlo, dup, err := domain.ToBound(d)
			if err != nil {
				return err
			}
			if rec.side != domain.SideUpper {
				lo = dlo
			}
			if rec.side != domain.SideLower {
				up = dup
			}
			if err := m.eng.PutColBound(j, key, lo, up); err != nil {
				return fmt.Errorf("model: write bound: %w", err)
			}
		}

	case conVarVec, conMatrixCone:
		// Same kind and shape carries no values to update.

	case conCone:
		ct, par, err := domain.ToCone(d)
		if err != nil {
			return err
		}
		cols := make([]int, len(rec.vars))
		for i, v := range rec.vars {
			cols[i] = m.column(&m.vars[v-1])
		}
		if err := m.eng.NullifyCone(rec.cone); err != nil {
			return fmt.Errorf("model: nullify cone: %w", err)
		}
		cid, err := m.eng.AppendCone(ct, par, domain.Reorder(cols, d.Kind, domain.ToEngine))
		if err != nil {
			return fmt.Errorf("model: append cone: %w", err)
		}
		rec.cone = cid
	}
	rec.dom = d
	return nil
}

// SetCoefficient sets the coefficient of one variable in a scalar affine
// constraint, replacing any previous value.
func (m *Model) SetCoefficient(c ConID, v VarID, coeff float64) error {
	rec, err := m.constraint(c)
	if err != nil {
		return err
	}
	if rec.kind != conAffine {
		return fmt.Errorf("%w: coefficient on constraint %d", ErrUnsupportedOperation, c)
	}
	vrec, err := m.variable(v)
	if err != nil {
		return err
	}
	i := m.rows.Resolve(rec.rows, 0)
	if vrec.matrix {
		off, hv := domain.BarCoeff(vrec.off, vrec.dim, coeff)
		if err := m.eng.PutBarA(i, vrec.block, off, hv); err != nil {
			return fmt.Errorf("model: bar coefficient: %w", err)
		}
		return nil
	}
	if err := m.eng.PutCoeff(i, m.column(vrec), coeff); err != nil {
		return fmt.Errorf("model: coefficient: %w", err)
	}
	return nil
}

// SetConstant replaces the constant term of a scalar affine constraint and
// reshifts its row bounds.
func (m *Model) SetConstant(c ConID, k float64) error {
	rec, err := m.constraint(c)
	if err != nil {
		return err
	}
	if rec.kind != conAffine {
		return fmt.Errorf("%w: constant on constraint %d", ErrUnsupportedOperation, c)
	}
	return m.shiftRows(rec, []float64{k})
}

// SetConstants replaces the per-row constants of a vector affine constraint.
func (m *Model) SetConstants(c ConID, ks []float64) error {
	rec, err := m.constraint(c)
	if err != nil {
		return err
	}
	if rec.kind != conAffineVec {
		return fmt.Errorf("%w: constants on constraint %d", ErrUnsupportedOperation, c)
	}
	if len(ks) != len(rec.consts) {
		return fmt.Errorf("%w: %d constants for %d rows", ErrDimensionMismatch, len(ks), len(rec.consts))
	}
	return m.shiftRows(rec, ks)
}

func (m *Model) shiftRows(rec *conRec, ks []float64) error {
	elem := rec.dom
	if rec.kind == conAffineVec {
		elem = memberDomain(rec.dom)
	}
	key, dlo, dup, err := domain.ToBound(elem)
	if err != nil {
		return err
	}
	for r := range ks {
		i := m.rows.Resolve(rec.rows, r)
		lo, up := domain.Shift(dlo, dup, ks[r])
		if err := m.eng.PutRowBound(i, key, lo, up); err != nil {
			return fmt.Errorf("model: row bound: %w", err)
		}
	}
	copy(rec.consts, ks)
	return nil
}

// ConstraintDomain reads back the domain a constraint was attached with.
func (m *Model) ConstraintDomain(c ConID) (domain.Domain, error) {
	rec, err := m.constraint(c)
	if err != nil {
		return domain.Domain{}, err
	}
	return rec.dom, nil
}

// rowTerms is one row of linear terms split into the scalar and bar parts,
// duplicates already summed and bar values already halved.
type rowTerms struct {
	cols []int
	vals []float64
	bars []barTerm
}

type barTerm struct {
	block int
	off   int
	val   float64
}

func (m *Model) collectTerms(vs []VarID, coeffs []float64) (rowTerms, error) {
	if len(vs) != len(coeffs) {
		return rowTerms{}, fmt.Errorf("%w: %d variables, %d coefficients",
			ErrDimensionMismatch, len(vs), len(coeffs))
	}
	colSum := make(map[int]float64)
	type barKey struct{ block, off, dim int }
	barSum := make(map[barKey]float64)
	for k, v := range vs {
		rec, err := m.variable(v)
		if err != nil {
			return rowTerms{}, err
		}
		if rec.matrix {
			barSum[barKey{rec.block, rec.off, rec.dim}] += coeffs[k]
		} else {
			colSum[m.column(rec)] += coeffs[k]
		}
	}

	var t rowTerms
	t.cols = make([]int, 0, len(colSum))
	for j := range colSum {
		t.cols = append(t.cols, j)
	}
	sort.Ints(t.cols)
	t.vals = make([]float64, len(t.cols))
	for k, j := range t.cols {
		t.vals[k] = colSum[j]
	}
	for bk, v := range barSum {
		off, hv := domain.BarCoeff(bk.off, bk.dim, v)
		t.bars = append(t.bars, barTerm{block: bk.block, off: off, val: hv})
	}
	sort.Slice(t.bars, func(a, b int) bool {
		if t.bars[a].block != t.bars[b].block {
			return t.bars[a].block < t.bars[b].block
		}
		return t.bars[a].off < t.bars[b].off
	})
	return t, nil
}

func (m *Model) writeRow(i int, t rowTerms) error {
	if err := m.eng.PutRowCoeffs(i, t.cols, t.vals); err != nil {
		return fmt.Errorf("model: row coefficients: %w", err)
	}
	for _, b := range t.bars {
		if err := m.eng.PutBarA(i, b.block, b.off, b.val); err != nil {
			return fmt.Errorf("model: bar coefficients: %w", err)
		}
	}
	return nil
}

// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"math"

	"github.com/curioloop/conelink/arena"
	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

// varRec tracks one variable. The record index plus one equals both the
// VarID and the column block id, since every AddVariable allocates exactly
// one block and appends exactly one record.
type varRec struct {
	live   bool
	matrix bool

	col arena.BlockID // scalar column block; cleared on matrix conversion

	// Matrix element address, valid once matrix is set.
	block int // engine bar block
	off   int // packed offset in caller order
	dim   int // matrix order

	cone    ConID // cone membership, 0 if none
	lowerBy ConID // constraint claiming the lower bound side
	upperBy ConID // constraint claiming the upper bound side
	intBy   ConID // integrality attachment
}

// AddVariable creates one free continuous variable and returns its id.
func (m *Model) AddVariable() (VarID, error) {
	grow := m.cols.EnsureCapacity(1)
	if grow > 0 {
		if err := m.eng.AppendCols(grow); err != nil {
			return 0, fmt.Errorf("model: append column: %w", err)
		}
	}
	id := m.cols.NewBlock(1)
	j := m.cols.Resolve(id, 0)
	// A reused position still carries the fixed-at-zero state left behind
	// by deletion.
	if err := m.eng.PutColBound(j, engine.BoundFree, math.Inf(-1), math.Inf(1)); err != nil {
		return 0, fmt.Errorf("model: init column %d: %w", j, err)
	}
	m.vars = append(m.vars, varRec{live: true, col: id})
	return VarID(len(m.vars)), nil
}

// AddVariables creates n free continuous variables.
func (m *Model) AddVariables(n int) ([]VarID, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d variables", ErrDimensionMismatch, n)
	}
	ids := make([]VarID, 0, n)
	for k := 0; k < n; k++ {
		id, err := m.AddVariable()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AddVariableConstraint attaches a scalar bound domain or integrality to a
// variable. Each variable holds at most one lower side, one upper side, and
// one integrality attachment; a second claim fails with ErrDuplicateBound.
func (m *Model) AddVariableConstraint(v VarID, d domain.Domain) (ConID, error) {
	rec, err := m.variable(v)
	if err != nil {
		return 0, err
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if rec.matrix {
		return 0, fmt.Errorf("%w: bound on matrix element %d", ErrUnsupportedOperation, v)
	}

	if d.Kind == domain.KindInteger {
		if rec.intBy != 0 {
			return 0, fmt.Errorf("%w: variable %d is already integer", domain.ErrDuplicateBound, v)
		}
		j := m.column(rec)
		if err := m.eng.PutColInteger(j, true); err != nil {
			return 0, fmt.Errorf("model: integer mark: %w", err)
		}
		id := m.newCon(conRec{kind: conVarScalar, dom: d, vars: []VarID{v}})
		rec.intBy = id
		return id, nil
	}

	side, err := domain.ClaimedSide(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %v on a variable", ErrIncompatibleDomain, d.Kind)
	}
	if err := m.checkSideFree(rec, v, side); err != nil {
		return 0, err
	}

	j := m.column(rec)
	key, lo, up, err := m.eng.GetColBound(j)
	if err != nil {
		return 0, fmt.Errorf("model: read bound: %w", err)
	}
	nk, nlo, nup, err := domain.Combine(key, lo, up, d)
	if err != nil {
		return 0, err
	}
	if err := m.eng.PutColBound(j, nk, nlo, nup); err != nil {
		return 0, fmt.Errorf("model: write bound: %w", err)
	}

	id := m.newCon(conRec{kind: conVarScalar, dom: d, vars: []VarID{v}, side: side})
	m.claimSide(rec, id, side)
	return id, nil
}

// AddVariableVectorConstraint attaches a vector domain to an ordered tuple
// of variables. Vector bound domains claim one bound side on every member.
// Cone domains register the member columns with the engine in its native
// order, and each variable may belong to at most one cone. A PSD domain
// converts the members into elements of a new matrix variable.
func (m *Model) AddVariableVectorConstraint(vs []VarID, d domain.Domain) (ConID, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	switch {
	case d.IsVectorBound():
		return m.addVectorBound(vs, d)
	case d.IsCone():
		return m.addVariableCone(vs, d)
	case d.IsMatrix():
		return m.convertToMatrix(vs, d)
	}
	return 0, fmt.Errorf("%w: %v on a variable tuple", ErrIncompatibleDomain, d.Kind)
}

func (m *Model) addVectorBound(vs []VarID, d domain.Domain) (ConID, error) {
	if d.Dim != len(vs) {
		return 0, fmt.Errorf("%w: domain dim %d, %d variables", ErrDimensionMismatch, d.Dim, len(vs))
	}
	side, err := domain.ClaimedSide(d)
	if err != nil {
		return 0, err
	}

	elem := memberDomain(d)
	recs := make([]*varRec, len(vs))
	seen := make(map[VarID]struct{}, len(vs))
	for i, v := range vs {
		rec, err := m.variable(v)
		if err != nil {
			return 0, err
		}
		if rec.matrix {
			return 0, fmt.Errorf("%w: bound on matrix element %d", ErrUnsupportedOperation, v)
		}
		if _, dup := seen[v]; dup {
			return 0, fmt.Errorf("%w: variable %d repeats in the tuple", domain.ErrDuplicateBound, v)
		}
		seen[v] = struct{}{}
		if err := m.checkSideFree(rec, v, side); err != nil {
			return 0, err
		}
		recs[i] = rec
	}
	// Dry-run the bound merges so a late conflict leaves nothing behind.
	for i, rec := range recs {
		j := m.column(rec)
		key, lo, up, err := m.eng.GetColBound(j)
		if err != nil {
			return 0, fmt.Errorf("model: read bound: %w", err)
		}
		if _, _, _, err := domain.Combine(key, lo, up, elem); err != nil {
			return 0, fmt.Errorf("variable %d: %w", vs[i], err)
		}
	}

	for _, rec := range recs {
		j := m.column(rec)
		key, lo, up, _ := m.eng.GetColBound(j)
		nk, nlo, nup, _ := domain.Combine(key, lo, up, elem)
		if err := m.eng.PutColBound(j, nk, nlo, nup); err != nil {
			return 0, fmt.Errorf("model: write bound: %w", err)
		}
	}

	id := m.newCon(conRec{kind: conVarVec, dom: d, vars: append([]VarID(nil), vs...), side: side})
	for _, rec := range recs {
		m.claimSide(rec, id, side)
	}
	return id, nil
}

func (m *Model) addVariableCone(vs []VarID, d domain.Domain) (ConID, error) {
	if d.Dim != len(vs) {
		return 0, fmt.Errorf("%w: domain dim %d, %d variables", ErrDimensionMismatch, d.Dim, len(vs))
	}
	cols := make([]int, len(vs))
	recs := make([]*varRec, len(vs))
	seen := make(map[VarID]struct{}, len(vs))
	for i, v := range vs {
		rec, err := m.variable(v)
		if err != nil {
			return 0, err
		}
		if rec.matrix {
			return 0, fmt.Errorf("%w: matrix element %d in a cone", ErrUnsupportedOperation, v)
		}
		if rec.cone != 0 {
			return 0, fmt.Errorf("%w: variable %d is in constraint %d", ErrVariableInCone, v, rec.cone)
		}
		if _, dup := seen[v]; dup {
			return 0, fmt.Errorf("%w: variable %d repeats in the tuple", ErrVariableInCone, v)
		}
		seen[v] = struct{}{}
		recs[i] = rec
		cols[i] = m.column(rec)
	}

	ct, par, err := domain.ToCone(d)
	if err != nil {
		return 0, err
	}
	members := domain.Reorder(cols, d.Kind, domain.ToEngine)
	cid, err := m.eng.AppendCone(ct, par, members)
	if err != nil {
		return 0, fmt.Errorf("model: append cone: %w", err)
	}

	id := m.newCon(conRec{kind: conCone, dom: d, vars: append([]VarID(nil), vs...), cone: cid})
	for _, rec := range recs {
		rec.cone = id
	}
	return id, nil
}

// DeleteVariable removes a variable: its column is blanked, fixed at zero,
// and the position is released for reuse. Scalar bound and integrality
// attachments detach along with it. Cone members and matrix elements cannot
// be deleted, nor can members of a vector bound constraint.
func (m *Model) DeleteVariable(v VarID) error {
	rec, err := m.variable(v)
	if err != nil {
		return err
	}
	if rec.matrix {
		return fmt.Errorf("%w: delete matrix element %d", ErrUnsupportedOperation, v)
	}
	if rec.cone != 0 {
		return fmt.Errorf("%w: variable %d is in constraint %d", ErrVariableInCone, v, rec.cone)
	}
	for _, c := range []ConID{rec.lowerBy, rec.upperBy} {
		if c != 0 && m.cons[c-1].kind == conVarVec {
			return fmt.Errorf("%w: variable %d is in vector constraint %d", ErrUnsupportedOperation, v, c)
		}
	}

	j := m.column(rec)
	if err := m.eng.ClearCol(j); err != nil {
		return fmt.Errorf("model: clear column: %w", err)
	}
	if err := m.eng.PutColBound(j, engine.BoundFixed, 0, 0); err != nil {
		return fmt.Errorf("model: blank column: %w", err)
	}
	if err := m.eng.PutCj(j, 0); err != nil {
		return fmt.Errorf("model: blank objective: %w", err)
	}
	if err := m.eng.PutColInteger(j, false); err != nil {
		return fmt.Errorf("model: blank integrality: %w", err)
	}
	delete(m.objCols, j)

	for _, c := range []ConID{rec.lowerBy, rec.upperBy, rec.intBy} {
		if c != 0 {
			m.cons[c-1].live = false
		}
	}
	if err := m.cols.DeleteBlock(rec.col); err != nil {
		return fmt.Errorf("model: release column: %w", err)
	}
	rec.live = false
	return nil
}

// VariableBounds reads back the combined bound domain of a variable.
func (m *Model) VariableBounds(v VarID) (domain.Domain, error) {
	rec, err := m.variable(v)
	if err != nil {
		return domain.Domain{}, err
	}
	if rec.matrix {
		return domain.Domain{}, fmt.Errorf("%w: matrix element %d has no bounds", ErrUnsupportedOperation, v)
	}
	key, lo, up, err := m.eng.GetColBound(m.column(rec))
	if err != nil {
		return domain.Domain{}, fmt.Errorf("model: read bound: %w", err)
	}
	return domain.FromBound(key, lo, up), nil
}

func (m *Model) checkSideFree(rec *varRec, v VarID, side domain.Side) error {
	if side != domain.SideUpper && rec.lowerBy != 0 {
		return fmt.Errorf("%w: variable %d lower side held by constraint %d",
			domain.ErrDuplicateBound, v, rec.lowerBy)
	}
	if side != domain.SideLower && rec.upperBy != 0 {
		return fmt.Errorf("%w: variable %d upper side held by constraint %d",
			domain.ErrDuplicateBound, v, rec.upperBy)
	}
	return nil
}

func (m *Model) claimSide(rec *varRec, id ConID, side domain.Side) {
	if side != domain.SideUpper {
		rec.lowerBy = id
	}
	if side != domain.SideLower {
		rec.upperBy = id
	}
}

// memberDomain gives the scalar domain a vector bound imposes on each member.
func memberDomain(d domain.Domain) domain.Domain {
	switch d.Kind {
	case domain.KindZeros:
		return domain.EqualTo(0)
	case domain.KindNonnegatives:
		return domain.GreaterThan(0)
	case domain.KindNonpositives:
		return domain.LessThan(0)
	}
	panic(fmt.Sprintf("domain %v is not a vector bound", d.Kind))
}

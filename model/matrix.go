// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/curioloop/conelink/arena"
	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

// convertToMatrix turns a packed triangle of scalar variables into the
// elements of a new engine matrix block. Objective and constraint
// coefficients already written against the scalar columns migrate to the
// bar side, then the columns are blanked, fixed at zero, and released.
// The conversion is one way: matrix elements never become scalars again.
func (m *Model) convertToMatrix(vs []VarID, d domain.Domain) (ConID, error) {
	if d.Dim != len(vs) {
		return 0, fmt.Errorf("%w: domain dim %d, %d variables", ErrDimensionMismatch, d.Dim, len(vs))
	}
	n := d.Order

	recs := make([]*varRec, len(vs))
	seen := make(map[VarID]struct{}, len(vs))
	for i, v := range vs {
		rec, err := m.variable(v)
		if err != nil {
			return 0, err
		}
		if rec.matrix {
			return 0, fmt.Errorf("%w: variable %d is already a matrix element", ErrUnsupportedOperation, v)
		}
		if rec.cone != 0 {
			return 0, fmt.Errorf("%w: variable %d is in constraint %d", ErrVariableInCone, v, rec.cone)
		}
		if rec.lowerBy != 0 || rec.upperBy != 0 || rec.intBy != 0 {
			return 0, fmt.Errorf("%w: variable %d carries bound attachments", ErrUnsupportedOperation, v)
		}
		if _, dup := seen[v]; dup {
			return 0, fmt.Errorf("%w: variable %d repeats in the triangle", ErrUnsupportedOperation, v)
		}
		seen[v] = struct{}{}
		recs[i] = rec
	}

	block, err := m.eng.AppendBarBlock(n)
	if err != nil {
		return 0, fmt.Errorf("model: append matrix block: %w", err)
	}
	for k, rec := range recs {
		if err := m.migrateColumn(rec, block, k, n); err != nil {
			return 0, err
		}
	}
	return m.newCon(conRec{
		kind:  conMatrixCone,
		dom:   d,
		vars:  append([]VarID(nil), vs...),
		block: block,
	}), nil
}

// migrateColumn moves one scalar column into matrix element (block, k) and
// retires the column.
func (m *Model) migrateColumn(rec *varRec, block, k, n int) error {
	j := m.column(rec)

	cj, err := m.eng.GetCj(j)
	if err != nil {
		return fmt.Errorf("model: read objective: %w", err)
	}
	if cj != 0 {
		off, hv := domain.BarCoeff(k, n, cj)
		if err := m.eng.PutBarC(block, off, hv); err != nil {
			return fmt.Errorf("model: bar objective: %w", err)
		}
		if err := m.eng.PutCj(j, 0); err != nil {
			return fmt.Errorf("model: blank objective: %w", err)
		}
		delete(m.objCols, j)
		m.objBars[[2]int{block, off}] = struct{}{}
	}

	cRows, cVals, err := m.eng.GetColCoeffs(j)
	if err != nil {
		return fmt.Errorf("model: read column: %w", err)
	}
	for t := range cRows {
		off, hv := domain.BarCoeff(k, n, cVals[t])
		if err := m.eng.PutBarA(cRows[t], block, off, hv); err != nil {
			return fmt.Errorf("model: bar coefficient: %w", err)
		}
	}
	if err := m.eng.ClearCol(j); err != nil {
		return fmt.Errorf("model: clear column: %w", err)
	}
	if err := m.eng.PutColBound(j, engine.BoundFixed, 0, 0); err != nil {
		return fmt.Errorf("model: blank column: %w", err)
	}
	if err := m.cols.DeleteBlock(rec.col); err != nil {
		return fmt.Errorf("model: release column: %w", err)
	}

	rec.matrix = true
	rec.col = arena.None
	rec.block = block
	rec.off = k
	rec.dim = n
	return nil
}

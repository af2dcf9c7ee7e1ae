// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/curioloop/conelink/domain"
	"github.com/curioloop/conelink/engine"
)

// SetObjective replaces the objective with
//
//	sense sum(coeffs[k]*vs[k]) + constant
//
// zeroing whatever objective was installed before. Terms on matrix elements
// go to the bar objective. Repeated variables have their coefficients summed.
func (m *Model) SetObjective(vs []VarID, coeffs []float64, constant float64, sense engine.Sense) error {
	if err := checkSense(sense); err != nil {
		return err
	}
	terms, err := m.collectTerms(vs, coeffs)
	if err != nil {
		return err
	}

	for j := range m.objCols {
		if err := m.eng.PutCj(j, 0); err != nil {
			return fmt.Errorf("model: blank objective: %w", err)
		}
	}
	for bk := range m.objBars {
		if err := m.eng.PutBarC(bk[0], bk[1], 0); err != nil {
			return fmt.Errorf("model: blank bar objective: %w", err)
		}
	}
	m.objCols = make(map[int]struct{})
	m.objBars = make(map[[2]int]struct{})

	for k, j := range terms.cols {
		if err := m.eng.PutCj(j, terms.vals[k]); err != nil {
			return fmt.Errorf("model: objective: %w", err)
		}
		m.objCols[j] = struct{}{}
	}
	for _, b := range terms.bars {
		if err := m.eng.PutBarC(b.block, b.off, b.val); err != nil {
			return fmt.Errorf("model: bar objective: %w", err)
		}
		m.objBars[[2]int{b.block, b.off}] = struct{}{}
	}
	m.eng.PutCFix(constant)
	m.eng.PutSense(sense)
	return nil
}

// SetObjectiveCoefficient sets the objective coefficient of one variable,
// leaving the rest of the objective alone.
func (m *Model) SetObjectiveCoefficient(v VarID, coeff float64) error {
	rec, err := m.variable(v)
	if err != nil {
		return err
	}
	if rec.matrix {
		off, hv := domain.BarCoeff(rec.off, rec.dim, coeff)
		if err := m.eng.PutBarC(rec.block, off, hv); err != nil {
			return fmt.Errorf("model: bar objective: %w", err)
		}
		bk := [2]int{rec.block, off}
		if coeff != 0 {
			m.objBars[bk] = struct{}{}
		} else {
			delete(m.objBars, bk)
		}
		return nil
	}
	j := m.column(rec)
	if err := m.eng.PutCj(j, coeff); err != nil {
		return fmt.Errorf("model: objective: %w", err)
	}
	if coeff != 0 {
		m.objCols[j] = struct{}{}
	} else {
		delete(m.objCols, j)
	}
	return nil
}

// SetObjectiveConstant replaces the objective's constant term.
func (m *Model) SetObjectiveConstant(k float64) {
	m.eng.PutCFix(k)
}

// SetSense switches between minimization and maximization.
func (m *Model) SetSense(sense engine.Sense) error {
	if err := checkSense(sense); err != nil {
		return err
	}
	m.eng.PutSense(sense)
	return nil
}

func checkSense(sense engine.Sense) error {
	switch sense {
	case engine.Minimize, engine.Maximize:
		return nil
	}
	return fmt.Errorf("model: unknown sense %d", int(sense))
}

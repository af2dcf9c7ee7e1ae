// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simlp

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/curioloop/conelink/engine"
)

// stdRow is one sparse constraint over active column indices.
type stdRow struct {
	cols []int
	vals []float64
	rhs  float64
}

// lpForm is the solvable snapshot of the engine data: a minimization over
// the active columns with equality rows and <= inequality rows. Branch and
// bound appends extra inequality rows per node.
//
// A column is active when it carries a non-free bound or a coefficient in a
// constraining row. Inactive columns take value zero in every solution; an
// inactive column with a nonzero objective makes the problem unbounded.
type lpForm struct {
	act  []int // active index -> engine column
	c    []float64
	eq   []stdRow
	ineq []stdRow
	ints []int // active indices that must be integral
}

// buildForm snapshots the engine data. A non-zero status reports a trivial
// certificate (an unsatisfiable empty row, or an unbounded pruned column)
// without invoking the simplex.
func (e *Engine) buildForm() (*lpForm, engine.SolStatus) {
	n := len(e.cols)

	active := make([]bool, n)
	for j, b := range e.cols {
		if b.key != engine.BoundFree {
			active[j] = true
		}
	}
	for i, row := range e.coef {
		if e.rows[i].key == engine.BoundFree {
			continue
		}
		if len(row) == 0 {
			// Empty constraining row: satisfiable only if zero fits.
			if e.rows[i].lo > 0 || e.rows[i].up < 0 {
				return nil, engine.StatusPrimalInfeasibleCert
			}
			continue
		}
		for j := range row {
			active[j] = true
		}
	}
	for j := 0; j < n; j++ {
		if !active[j] && e.obj[j] != 0 {
			// A free, unconstrained column with a cost has no optimum.
			return nil, engine.StatusDualInfeasibleCert
		}
	}

	f := &lpForm{}
	pos := make([]int, n)
	for j := 0; j < n; j++ {
		pos[j] = -1
		if active[j] {
			pos[j] = len(f.act)
			f.act = append(f.act, j)
		}
	}

	f.c = make([]float64, len(f.act))
	for k, j := range f.act {
		f.c[k] = e.obj[j]
		if e.sense == engine.Maximize {
			f.c[k] = -f.c[k]
		}
		if e.integer[j] {
			f.ints = append(f.ints, k)
		}
	}

	for i, row := range e.coef {
		b := e.rows[i]
		if b.key == engine.BoundFree || len(row) == 0 {
			continue
		}
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		vals := make([]float64, len(cols))
		acts := make([]int, len(cols))
		for k, j := range cols {
			vals[k] = row[j]
			acts[k] = pos[j]
		}
		f.addRow(b, acts, vals)
	}

	for k, j := range f.act {
		b := e.cols[j]
		if b.key == engine.BoundFree {
			continue
		}
		f.addRow(b, []int{k}, []float64{1})
	}
	return f, engine.StatusUnknown
}

// addRow turns one bounded body into equality or inequality rows.
func (f *lpForm) addRow(b bound, cols []int, vals []float64) {
	switch b.key {
	case engine.BoundFixed:
		f.eq = append(f.eq, stdRow{cols: cols, vals: vals, rhs: b.lo})
	case engine.BoundUpper:
		f.ineq = append(f.ineq, stdRow{cols: cols, vals: vals, rhs: b.up})
	case engine.BoundLower:
		f.ineq = append(f.ineq, stdRow{cols: cols, vals: scale(vals, -1), rhs: -b.lo})
	case engine.BoundRange:
		f.ineq = append(f.ineq, stdRow{cols: cols, vals: vals, rhs: b.up})
		f.ineq = append(f.ineq, stdRow{cols: cols, vals: scale(vals, -1), rhs: -b.lo})
	}
}

func scale(v []float64, by float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * by
	}
	return out
}

// solveStd converts the form plus extra inequality rows into the standard
// form min c'x, Ax = b, x >= 0 by splitting every column into a positive and
// a negative part and giving each inequality a slack column, then runs the
// simplex. The returned vector is over active indices.
func solveStd(f *lpForm, extra []stdRow, tol float64) ([]float64, float64, error) {
	n := len(f.act)
	ineq := make([]stdRow, 0, len(f.ineq)+len(extra))
	ineq = append(ineq, f.ineq...)
	ineq = append(ineq, extra...)

	nRow := len(f.eq) + len(ineq)
	nStd := 2*n + len(ineq)

	cStd := make([]float64, nStd)
	for k, v := range f.c {
		cStd[k] = v
		cStd[n+k] = -v
	}

	a := mat.NewDense(nRow, nStd, nil)
	b := make([]float64, nRow)
	for r, row := range f.eq {
		for k, j := range row.cols {
			a.Set(r, j, row.vals[k])
			a.Set(r, n+j, -row.vals[k])
		}
		b[r] = row.rhs
	}
	for r, row := range ineq {
		rr := len(f.eq) + r
		for k, j := range row.cols {
			a.Set(rr, j, row.vals[k])
			a.Set(rr, n+j, -row.vals[k])
		}
		a.Set(rr, 2*n+r, 1)
		b[rr] = row.rhs
	}

	optF, xStd, err := lp.Simplex(cStd, a, b, tol, nil)
	if err != nil {
		return nil, 0, err
	}
	x := make([]float64, n)
	for k := range x {
		x[k] = xStd[k] - xStd[n+k]
	}
	return x, optF, nil
}

// Solve snapshots the data, runs the simplex (wrapped in branch and bound
// when integer columns are present) and publishes the solutions. Conic and
// matrix content is rejected; infeasibility and unboundedness are published
// as solution statuses with a success termination.
func (e *Engine) Solve() (engine.TermCode, error) {
	if err := e.guard(); err != nil {
		return engine.TermSuccess, err
	}
	for _, c := range e.cones {
		if c.live {
			return engine.TermSuccess, ErrConicUnsupported
		}
	}
	if len(e.bars) > 0 {
		return engine.TermSuccess, ErrConicUnsupported
	}

	e.sols = map[engine.SolType]engine.RawSolution{}
	hasInt := false
	for _, on := range e.integer {
		if on {
			hasInt = true
			break
		}
	}

	form, cert := e.buildForm()
	if cert != engine.StatusUnknown {
		e.publishCert(hasInt, cert)
		return engine.TermSuccess, nil
	}

	rootX, _, err := solveStd(form, nil, e.simTol)
	switch {
	case err == nil:
	case errors.Is(err, lp.ErrInfeasible):
		e.publishCert(hasInt, engine.StatusPrimalInfeasibleCert)
		return engine.TermSuccess, nil
	case errors.Is(err, lp.ErrUnbounded):
		e.publishCert(hasInt, engine.StatusDualInfeasibleCert)
		return engine.TermSuccess, nil
	default:
		return engine.TermSuccess, fmt.Errorf("simlp: relaxation solve: %w", err)
	}

	if !hasInt {
		full := e.expand(form, rootX)
		e.publish(engine.SolBasic, e.valueSolution(full, engine.StatusOptimal, true))
		e.publish(engine.SolInterior, e.valueSolution(full, engine.StatusOptimal, false))
		return engine.TermSuccess, nil
	}

	// The relaxation optimum is published as the interior kind with no
	// feasibility claim for the integer problem.
	rootFull := e.expand(form, rootX)
	root := e.valueSolution(rootFull, engine.StatusUnknown, false)
	e.publish(engine.SolInterior, root)

	b := &bnb{
		form:     form,
		tol:      e.simTol,
		ctol:     e.compareTol(),
		maxNodes: e.maxNodes,
	}
	if e.timeLimit > 0 {
		b.deadline = time.Now().Add(time.Duration(e.timeLimit * float64(time.Second)))
	}
	exhausted, timedOut, err := b.run()
	if err != nil {
		return engine.TermSuccess, fmt.Errorf("simlp: branch and bound: %w", err)
	}

	switch {
	case b.found:
		full := e.expand(form, b.bestX)
		status := engine.StatusOptimal
		if !exhausted {
			status = engine.StatusPrimalFeasible
		}
		sol := e.valueSolution(full, status, false)
		sol.ColDual, sol.RowDual = nil, nil // integer kind has no duals
		e.publish(engine.SolInteger, sol)
	case exhausted:
		e.publish(engine.SolInteger, engine.RawSolution{Status: engine.StatusPrimalInfeasibleCert})
	}

	switch {
	case timedOut:
		return engine.TermTimeLimit, nil
	case !exhausted:
		return engine.TermIterationLimit, nil
	}
	return engine.TermSuccess, nil
}

// compareTol is the width used for bound-status and integrality checks.
func (e *Engine) compareTol() float64 {
	if e.simTol > 0 {
		return e.simTol
	}
	return 1e-9
}

// expand scatters an active-index vector onto all engine columns.
func (e *Engine) expand(f *lpForm, x []float64) []float64 {
	full := make([]float64, len(e.cols))
	for k, j := range f.act {
		full[j] = x[k]
	}
	return full
}

// valueSolution assembles a published solution from full column values:
// activities, objective, zero duals and, for the basic kind, status keys
// recovered by comparing values to bounds.
func (e *Engine) valueSolution(full []float64, status engine.SolStatus, keys bool) engine.RawSolution {
	act := make([]float64, len(e.rows))
	for i, row := range e.coef {
		sum := 0.0
		for j, v := range row {
			sum += v * full[j]
		}
		act[i] = sum
	}
	obj := floats.Dot(e.obj, full) + e.cfix

	s := engine.RawSolution{
		Status:    status,
		PrimalObj: obj,
		ColPrimal: append([]float64(nil), full...),
		RowPrimal: act,
		ColDual:   make([]float64, len(e.cols)),
		RowDual:   make([]float64, len(e.rows)),
	}
	if status == engine.StatusOptimal {
		s.DualObj = obj
	}
	if keys {
		ctol := e.compareTol()
		s.ColStat = make([]engine.StatusKey, len(e.cols))
		for j, b := range e.cols {
			s.ColStat[j] = statusKey(full[j], b, ctol)
		}
		s.RowStat = make([]engine.StatusKey, len(e.rows))
		for i, b := range e.rows {
			s.RowStat[i] = statusKey(act[i], b, ctol)
		}
	}
	return s
}

func statusKey(v float64, b bound, tol float64) engine.StatusKey {
	switch {
	case b.key == engine.BoundFixed:
		return engine.KeyFixed
	case !math.IsInf(b.lo, -1) && math.Abs(v-b.lo) <= tol:
		return engine.KeyAtLower
	case !math.IsInf(b.up, 1) && math.Abs(v-b.up) <= tol:
		return engine.KeyAtUpper
	}
	return engine.KeyBasic
}

func (e *Engine) publish(t engine.SolType, s engine.RawSolution) {
	s.Normalize()
	e.sols[t] = s
}

// publishCert publishes a bare certificate status under the kind the caller
// will look for: integer when integrality is present, basic otherwise.
func (e *Engine) publishCert(hasInt bool, status engine.SolStatus) {
	t := engine.SolBasic
	if hasInt {
		t = engine.SolInteger
	}
	e.publish(t, engine.RawSolution{Status: status})
}

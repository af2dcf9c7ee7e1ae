// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simlp

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

// bnb walks the branch and bound tree depth first. Each node is the root
// relaxation plus one extra single-column bound per branching decision;
// fractional nodes branch on their most fractional integer column, the
// floor side explored first. Nodes that cannot beat the incumbent are cut.
type bnb struct {
	form     *lpForm
	tol      float64
	ctol     float64
	maxNodes int
	deadline time.Time

	nodes   int
	found   bool
	bestX   []float64
	bestObj float64
}

type bnode struct {
	extra []stdRow
}

// run drains the tree. It reports whether the tree was exhausted and
// whether the soft deadline cut the walk short.
func (b *bnb) run() (exhausted, timedOut bool, err error) {
	stack := []bnode{{}}
	for len(stack) > 0 {
		if b.nodes >= b.maxNodes {
			return false, false, nil
		}
		if !b.deadline.IsZero() && time.Now().After(b.deadline) {
			return false, true, nil
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.nodes++

		x, obj, serr := solveStd(b.form, n.extra, b.tol)
		switch {
		case errors.Is(serr, lp.ErrInfeasible):
			continue
		case errors.Is(serr, lp.ErrUnbounded):
			// Cannot happen below a bounded root; treat as a cut branch.
			continue
		case serr != nil:
			return false, false, serr
		}

		if b.found && obj >= b.bestObj-1e-12 {
			continue
		}

		j := b.mostFractional(x)
		if j < 0 {
			b.accept(x, obj)
			continue
		}

		floor := math.Floor(x[j])
		le := append(copyRows(n.extra), stdRow{cols: []int{j}, vals: []float64{1}, rhs: floor})
		ge := append(copyRows(n.extra), stdRow{cols: []int{j}, vals: []float64{-1}, rhs: -(floor + 1)})
		stack = append(stack, bnode{extra: ge}, bnode{extra: le})
	}
	return true, false, nil
}

// mostFractional picks the integer column farthest from integrality, or -1
// when the point is integer feasible.
func (b *bnb) mostFractional(x []float64) int {
	best, worst := -1, b.ctol
	for _, k := range b.form.ints {
		frac := math.Abs(x[k] - math.Round(x[k]))
		if frac > worst {
			best, worst = k, frac
		}
	}
	return best
}

// accept records a new incumbent, snapping its integer coordinates.
func (b *bnb) accept(x []float64, obj float64) {
	snapped := append([]float64(nil), x...)
	for _, k := range b.form.ints {
		snapped[k] = math.Round(snapped[k])
	}
	b.bestX = snapped
	b.bestObj = obj
	b.found = true
}

func copyRows(rows []stdRow) []stdRow {
	out := make([]stdRow, len(rows), len(rows)+1)
	copy(out, rows)
	return out
}

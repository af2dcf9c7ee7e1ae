// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

// RawSolution is one solution kind as published by an engine, in engine
// positions and engine element order. Slices an engine does not produce for
// a kind are left nil; Normalize gives every consumer the uniform
// empty-but-non-nil shape.
type RawSolution struct {
	Status    SolStatus
	PrimalObj float64
	DualObj   float64

	ColStat []StatusKey
	RowStat []StatusKey

	ColPrimal []float64 // x, one per column
	RowPrimal []float64 // row activity, one per row
	ColDual   []float64 // reduced cost, one per column
	RowDual   []float64 // y, one per row

	BarPrimal [][]float64 // packed upper triangle, one slice per matrix block
	BarDual   [][]float64
}

// Normalize replaces every nil slice with an empty one so downstream code
// can index and range without nil checks.
func (s *RawSolution) Normalize() {
	if s.ColStat == nil {
		s.ColStat = []StatusKey{}
	}
	if s.RowStat == nil {
		s.RowStat = []StatusKey{}
	}
	if s.ColPrimal == nil {
		s.ColPrimal = []float64{}
	}
	if s.RowPrimal == nil {
		s.RowPrimal = []float64{}
	}
	if s.ColDual == nil {
		s.ColDual = []float64{}
	}
	if s.RowDual == nil {
		s.RowDual = []float64{}
	}
	if s.BarPrimal == nil {
		s.BarPrimal = [][]float64{}
	}
	if s.BarDual == nil {
		s.BarDual = [][]float64{}
	}
}

// Defined reports whether the solution carries any information at all.
// Engines may publish placeholder kinds; consumers drop undefined ones.
func (s *RawSolution) Defined() bool {
	return s.Status != StatusUnknown ||
		len(s.ColPrimal) > 0 || len(s.RowPrimal) > 0 ||
		len(s.ColDual) > 0 || len(s.RowDual) > 0 ||
		len(s.BarPrimal) > 0 || len(s.BarDual) > 0
}

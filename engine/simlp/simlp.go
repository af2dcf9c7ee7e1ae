// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simlp is an in-memory engine that solves the linear and integer
// subset of the contract with gonum's simplex. Conic and matrix data are
// fully bookkept and readable back, but a solve over them is rejected.
package simlp

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/conelink/engine"
)

var (
	// ErrClosed reports use of an engine after Close.
	ErrClosed = errors.New("simlp: engine is closed")

	// ErrConicUnsupported reports a Solve over live cones or matrix blocks.
	ErrConicUnsupported = errors.New("simlp: conic solve not supported")
)

// Engine parameters. Unknown names are rejected at PutParam time.
const (
	// ParamTolerance is the simplex pivot tolerance (float, 0 = gonum default).
	// It also widens the integrality and bound-status comparisons.
	ParamTolerance = "sim.tolerance"
	// ParamMaxNodes caps the branch and bound tree size (int).
	ParamMaxNodes = "mio.max_nodes"
	// ParamTimeLimit is a soft wall-clock limit in seconds, checked between
	// branch nodes (float, 0 = none).
	ParamTimeLimit = "time_limit"
)

const defaultMaxNodes = 10000

type bound struct {
	key engine.BoundKey
	lo  float64
	up  float64
}

type cone struct {
	ct      engine.ConeType
	par     float64
	members []int
	live    bool
}

type barBlock struct {
	dim  int
	c    map[int]float64         // packed objective entries
	rows map[int]map[int]float64 // row -> packed offset -> coefficient
}

// Engine is the reference engine.Engine. Columns, rows, cones and bar blocks
// live in append-only slices; clearing blanks entries in place. Not safe for
// concurrent use.
type Engine struct {
	cols    []bound
	rows    []bound
	coef    []map[int]float64 // per row: column -> coefficient
	integer []bool
	obj     []float64
	cfix    float64
	sense   engine.Sense

	cones  []cone
	inCone []int // per column: cone index + 1, or 0

	bars []barBlock

	simTol    float64
	maxNodes  int
	timeLimit float64

	sols   map[engine.SolType]engine.RawSolution
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

// New returns an empty engine with default parameters.
func New() *Engine {
	return &Engine{maxNodes: defaultMaxNodes, sols: map[engine.SolType]engine.RawSolution{}}
}

func (e *Engine) NumCols() int { return len(e.cols) }
func (e *Engine) NumRows() int { return len(e.rows) }

func (e *Engine) guard() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *Engine) colRange(j int) error {
	if j < 0 || j >= len(e.cols) {
		return fmt.Errorf("%w: column %d of %d", engine.ErrIndexRange, j, len(e.cols))
	}
	return nil
}

func (e *Engine) rowRange(i int) error {
	if i < 0 || i >= len(e.rows) {
		return fmt.Errorf("%w: row %d of %d", engine.ErrIndexRange, i, len(e.rows))
	}
	return nil
}

func (e *Engine) AppendCols(n int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: append %d columns", engine.ErrIndexRange, n)
	}
	for k := 0; k < n; k++ {
		e.cols = append(e.cols, bound{key: engine.BoundFree, lo: math.Inf(-1), up: math.Inf(1)})
		e.integer = append(e.integer, false)
		e.obj = append(e.obj, 0)
		e.inCone = append(e.inCone, 0)
	}
	return nil
}

func (e *Engine) AppendRows(n int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: append %d rows", engine.ErrIndexRange, n)
	}
	for k := 0; k < n; k++ {
		e.rows = append(e.rows, bound{key: engine.BoundFree, lo: math.Inf(-1), up: math.Inf(1)})
		e.coef = append(e.coef, map[int]float64{})
	}
	return nil
}

// checkBound validates a bound triple against its key.
func checkBound(key engine.BoundKey, lo, up float64) error {
	if math.IsNaN(lo) || math.IsNaN(up) {
		return fmt.Errorf("%w: NaN bound", engine.ErrBadBound)
	}
	switch key {
	case engine.BoundFree:
		return nil
	case engine.BoundLower:
		if math.IsInf(lo, 0) {
			return fmt.Errorf("%w: lower key needs finite lo", engine.ErrBadBound)
		}
	case engine.BoundUpper:
		if math.IsInf(up, 0) {
			return fmt.Errorf("%w: upper key needs finite up", engine.ErrBadBound)
		}
	case engine.BoundRange:
		if math.IsInf(lo, 0) || math.IsInf(up, 0) || lo > up {
			return fmt.Errorf("%w: range needs finite lo <= up", engine.ErrBadBound)
		}
	case engine.BoundFixed:
		if math.IsInf(lo, 0) || lo != up {
			return fmt.Errorf("%w: fixed key needs lo == up finite", engine.ErrBadBound)
		}
	default:
		return fmt.Errorf("%w: unknown key %d", engine.ErrBadBound, int(key))
	}
	return nil
}

// normalBound stores canonical infinities on the sides a key leaves open.
func normalBound(key engine.BoundKey, lo, up float64) bound {
	switch key {
	case engine.BoundFree:
		lo, up = math.Inf(-1), math.Inf(1)
	case engine.BoundLower:
		up = math.Inf(1)
	case engine.BoundUpper:
		lo = math.Inf(-1)
	}
	return bound{key: key, lo: lo, up: up}
}

func (e *Engine) PutColBound(j int, key engine.BoundKey, lo, up float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.colRange(j); err != nil {
		return err
	}
	if err := checkBound(key, lo, up); err != nil {
		return err
	}
	e.cols[j] = normalBound(key, lo, up)
	return nil
}

func (e *Engine) PutRowBound(i int, key engine.BoundKey, lo, up float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.rowRange(i); err != nil {
		return err
	}
	if err := checkBound(key, lo, up); err != nil {
		return err
	}
	e.rows[i] = normalBound(key, lo, up)
	return nil
}

func (e *Engine) GetColBound(j int) (engine.BoundKey, float64, float64, error) {
	if err := e.guard(); err != nil {
		return 0, 0, 0, err
	}
	if err := e.colRange(j); err != nil {
		return 0, 0, 0, err
	}
	b := e.cols[j]
	return b.key, b.lo, b.up, nil
}

func (e *Engine) GetRowBound(i int) (engine.BoundKey, float64, float64, error) {
	if err := e.guard(); err != nil {
		return 0, 0, 0, err
	}
	if err := e.rowRange(i); err != nil {
		return 0, 0, 0, err
	}
	b := e.rows[i]
	return b.key, b.lo, b.up, nil
}

func (e *Engine) PutCoeff(i, j int, v float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.rowRange(i); err != nil {
		return err
	}
	if err := e.colRange(j); err != nil {
		return err
	}
	if v == 0 {
		delete(e.coef[i], j)
	} else {
		e.coef[i][j] = v
	}
	return nil
}

func (e *Engine) PutRowCoeffs(i int, cols []int, vals []float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.rowRange(i); err != nil {
		return err
	}
	if len(cols) != len(vals) {
		return fmt.Errorf("%w: %d columns, %d values", engine.ErrLenMismatch, len(cols), len(vals))
	}
	for _, j := range cols {
		if err := e.colRange(j); err != nil {
			return err
		}
	}
	row := make(map[int]float64, len(cols))
	for k, j := range cols {
		if vals[k] != 0 {
			row[j] = vals[k]
		}
	}
	e.coef[i] = row
	return nil
}

func (e *Engine) GetColCoeffs(j int) ([]int, []float64, error) {
	if err := e.guard(); err != nil {
		return nil, nil, err
	}
	if err := e.colRange(j); err != nil {
		return nil, nil, err
	}
	var rows []int
	var vals []float64
	for i := range e.coef {
		if v, ok := e.coef[i][j]; ok {
			rows = append(rows, i)
			vals = append(vals, v)
		}
	}
	return rows, vals, nil
}

func (e *Engine) ClearCol(j int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.colRange(j); err != nil {
		return err
	}
	for i := range e.coef {
		delete(e.coef[i], j)
	}
	return nil
}

func (e *Engine) ClearRow(i int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.rowRange(i); err != nil {
		return err
	}
	e.coef[i] = map[int]float64{}
	return nil
}

func (e *Engine) PutColInteger(j int, on bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.colRange(j); err != nil {
		return err
	}
	e.integer[j] = on
	return nil
}

func (e *Engine) PutCj(j int, v float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.colRange(j); err != nil {
		return err
	}
	e.obj[j] = v
	return nil
}

func (e *Engine) GetCj(j int) (float64, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	if err := e.colRange(j); err != nil {
		return 0, err
	}
	return e.obj[j], nil
}

func (e *Engine) PutCFix(v float64) { e.cfix = v }

func (e *Engine) PutSense(s engine.Sense) { e.sense = s }

func (e *Engine) AppendCone(ct engine.ConeType, par float64, members []int) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty cone", engine.ErrIndexRange)
	}
	for _, j := range members {
		if err := e.colRange(j); err != nil {
			return 0, err
		}
	}
	seen := make(map[int]bool, len(members))
	for _, j := range members {
		if e.inCone[j] != 0 || seen[j] {
			return 0, fmt.Errorf("%w: column %d", engine.ErrConeOverlap, j)
		}
		seen[j] = true
	}
	id := len(e.cones)
	e.cones = append(e.cones, cone{ct: ct, par: par, members: append([]int(nil), members...), live: true})
	for _, j := range members {
		e.inCone[j] = id + 1
	}
	return id, nil
}

func (e *Engine) NullifyCone(coneID int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if coneID < 0 || coneID >= len(e.cones) || !e.cones[coneID].live {
		return fmt.Errorf("%w: cone %d", engine.ErrDeadCone, coneID)
	}
	c := &e.cones[coneID]
	c.live = false
	for _, j := range c.members {
		e.inCone[j] = 0
	}
	c.members = nil
	return nil
}

func (e *Engine) GetCone(coneID int) (engine.ConeType, float64, []int, error) {
	if err := e.guard(); err != nil {
		return 0, 0, nil, err
	}
	if coneID < 0 || coneID >= len(e.cones) || !e.cones[coneID].live {
		return 0, 0, nil, fmt.Errorf("%w: cone %d", engine.ErrDeadCone, coneID)
	}
	c := e.cones[coneID]
	return c.ct, c.par, append([]int(nil), c.members...), nil
}

func (e *Engine) AppendBarBlock(dim int) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	if dim < 1 {
		return 0, fmt.Errorf("%w: bar block dim %d", engine.ErrIndexRange, dim)
	}
	e.bars = append(e.bars, barBlock{dim: dim, c: map[int]float64{}, rows: map[int]map[int]float64{}})
	return len(e.bars) - 1, nil
}

func (e *Engine) barRange(block, k int) error {
	if block < 0 || block >= len(e.bars) {
		return fmt.Errorf("%w: bar block %d of %d", engine.ErrIndexRange, block, len(e.bars))
	}
	dim := e.bars[block].dim
	if k < 0 || k >= dim*(dim+1)/2 {
		return fmt.Errorf("%w: packed offset %d in %d×%d block", engine.ErrIndexRange, k, dim, dim)
	}
	return nil
}

func (e *Engine) PutBarC(block, k int, v float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.barRange(block, k); err != nil {
		return err
	}
	if v == 0 {
		delete(e.bars[block].c, k)
	} else {
		e.bars[block].c[k] = v
	}
	return nil
}

func (e *Engine) PutBarA(i, block, k int, v float64) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.rowRange(i); err != nil {
		return err
	}
	if err := e.barRange(block, k); err != nil {
		return err
	}
	row := e.bars[block].rows[i]
	if row == nil {
		row = map[int]float64{}
		e.bars[block].rows[i] = row
	}
	if v == 0 {
		delete(row, k)
	} else {
		row[k] = v
	}
	return nil
}

func (e *Engine) PutParam(name string, v engine.ParamValue) error {
	if err := e.guard(); err != nil {
		return err
	}
	switch name {
	case ParamTolerance:
		if v.Kind != engine.ParamFloat {
			return fmt.Errorf("%w: %s wants a float", engine.ErrUnknownParam, name)
		}
		if v.Float < 0 || math.IsNaN(v.Float) {
			return fmt.Errorf("%w: %s must be >= 0", engine.ErrUnknownParam, name)
		}
		e.simTol = v.Float
	case ParamMaxNodes:
		if v.Kind != engine.ParamInt {
			return fmt.Errorf("%w: %s wants an int", engine.ErrUnknownParam, name)
		}
		if v.Int < 1 {
			return fmt.Errorf("%w: %s must be >= 1", engine.ErrUnknownParam, name)
		}
		e.maxNodes = v.Int
	case ParamTimeLimit:
		if v.Kind != engine.ParamFloat {
			return fmt.Errorf("%w: %s wants a float", engine.ErrUnknownParam, name)
		}
		if v.Float < 0 || math.IsNaN(v.Float) {
			return fmt.Errorf("%w: %s must be >= 0", engine.ErrUnknownParam, name)
		}
		e.timeLimit = v.Float
	default:
		return fmt.Errorf("%w: %q", engine.ErrUnknownParam, name)
	}
	return nil
}

func (e *Engine) HasSolution(t engine.SolType) bool {
	_, ok := e.sols[t]
	return ok
}

func (e *Engine) Solution(t engine.SolType) (engine.RawSolution, error) {
	if err := e.guard(); err != nil {
		return engine.RawSolution{}, err
	}
	s, ok := e.sols[t]
	if !ok {
		return engine.RawSolution{}, fmt.Errorf("%w: %s", engine.ErrNoSolution, t)
	}
	return s, nil
}

func (e *Engine) Close() error {
	e.closed = true
	e.sols = nil
	return nil
}

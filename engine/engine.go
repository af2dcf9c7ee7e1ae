// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine defines the contract between the incremental model layer
// and a positional, append-only solver backend.
package engine

import "errors"

var (
	// ErrIndexRange reports a column, row, cone or block index outside the
	// engine's current dimensions.
	ErrIndexRange = errors.New("engine: index out of range")

	// ErrLenMismatch reports paired slices of different lengths.
	ErrLenMismatch = errors.New("engine: slice lengths differ")

	// ErrBadBound reports a bound pair inconsistent with its key, such as a
	// range with lo > up or a non-finite fixed value.
	ErrBadBound = errors.New("engine: bound pair inconsistent with key")

	// ErrConeOverlap reports an attempt to put a column into a second live cone.
	ErrConeOverlap = errors.New("engine: column already belongs to a live cone")

	// ErrDeadCone reports an operation on a nullified or unknown cone.
	ErrDeadCone = errors.New("engine: cone is nullified or unknown")

	// ErrUnknownParam reports a parameter name the engine does not accept.
	ErrUnknownParam = errors.New("engine: unknown parameter")

	// ErrNoSolution reports a request for a solution kind the last solve did
	// not produce. Absence of a kind is expected; gate with HasSolution.
	ErrNoSolution = errors.New("engine: no solution of the requested kind")
)

// Engine is a positional, append-only solver backend.
//
// Columns and rows are addressed by 0-based position. Appending is the only
// way to create them and nothing ever shifts: ClearCol and ClearRow blank an
// entry without renumbering its neighbours, which lets the caller manage
// position reuse itself. Cones and matrix blocks follow the same scheme with
// NullifyCone as the clearing operation for cones.
//
// Implementations are not required to be safe for concurrent use.
type Engine interface {
	// NumCols and NumRows report the current array dimensions.
	NumCols() int
	NumRows() int

	// AppendCols and AppendRows grow the arrays by n entries. New columns
	// are free with zero objective; new rows are free with no coefficients.
	AppendCols(n int) error
	AppendRows(n int) error

	// PutColBound and PutRowBound replace an entry's bound pair. Sides not
	// covered by the key are ignored by the engine.
	PutColBound(j int, key BoundKey, lo, up float64) error
	PutRowBound(i int, key BoundKey, lo, up float64) error

	// GetColBound and GetRowBound read an entry's bound pair back.
	GetColBound(j int) (BoundKey, float64, float64, error)
	GetRowBound(i int) (BoundKey, float64, float64, error)

	// PutCoeff sets one constraint-matrix entry; PutRowCoeffs replaces a
	// whole row by parallel column/value slices.
	PutCoeff(i, j int, v float64) error
	PutRowCoeffs(i int, cols []int, vals []float64) error

	// GetColCoeffs returns the rows and values of every nonzero in column j.
	GetColCoeffs(j int) (rows []int, vals []float64, err error)

	// ClearCol and ClearRow zero every coefficient of the entry without
	// renumbering. Bounds and objective entries are untouched.
	ClearCol(j int) error
	ClearRow(i int) error

	// PutColInteger marks or unmarks a column as integer.
	PutColInteger(j int, on bool) error

	// PutCj and GetCj access one linear objective coefficient; PutCFix sets
	// the objective constant; PutSense sets the optimization direction.
	PutCj(j int, v float64) error
	GetCj(j int) (float64, error)
	PutCFix(v float64)
	PutSense(s Sense)

	// AppendCone registers a cone over member columns, in engine order, and
	// returns its index. A column may belong to at most one live cone.
	AppendCone(ct ConeType, par float64, members []int) (int, error)

	// NullifyCone tombstones a cone: its members become free to join new
	// cones and the index is never reused.
	NullifyCone(coneID int) error

	// GetCone reads a live cone back.
	GetCone(coneID int) (ConeType, float64, []int, error)

	// AppendBarBlock adds a dim×dim symmetric matrix variable and returns
	// its block index. Entries are addressed by 0-based packed
	// upper-triangle offset in PutBarC (objective) and PutBarA (row i).
	AppendBarBlock(dim int) (int, error)
	PutBarC(block, k int, v float64) error
	PutBarA(i, block, k int, v float64) error

	// PutParam sets one solver parameter. Unknown names are rejected with
	// ErrUnknownParam so the caller can validate eagerly.
	PutParam(name string, v ParamValue) error

	// Solve runs the solver on the current data. Infeasibility and
	// unboundedness are not errors: they arrive as solution statuses.
	Solve() (TermCode, error)

	// HasSolution reports whether the last solve produced the given kind;
	// Solution returns it. Results persist until the next Solve.
	HasSolution(t SolType) bool
	Solution(t SolType) (RawSolution, error)

	// Close releases the backend. The engine is unusable afterwards.
	Close() error
}

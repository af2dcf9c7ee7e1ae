// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model maps stable variable and constraint identifiers onto the
// positional column and row indices of an append-only solver engine.
package model

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/curioloop/conelink/arena"
	"github.com/curioloop/conelink/engine"
)

// VarID refers to a variable for the lifetime of the model.
// Identifiers are never reused, even after deletion.
type VarID int64

// ConID refers to a constraint for the lifetime of the model.
// Identifiers are never reused, even after deletion.
type ConID int64

// Options configures a Model.
type Options struct {
	// Engine builds the backing solver. It is invoked once by New and
	// once per Reset, so the model can discard engine state wholesale.
	Engine func() (engine.Engine, error)
	// Logger receives solve and lifecycle events. Defaults to a silent logger.
	Logger *slog.Logger
}

// Model owns one engine instance together with the bookkeeping that keeps
// caller identifiers stable while engine positions shift underneath.
//
// A Model is not safe for concurrent use.
type Model struct {
	eng     engine.Engine
	factory func() (engine.Engine, error)
	log     *slog.Logger

	cols *arena.Arena
	rows *arena.Arena

	vars []varRec
	cons []conRec

	// Columns and bar entries holding objective coefficients, so a full
	// SetObjective can zero the previous objective without scanning.
	objCols map[int]struct{}
	objBars map[[2]int]struct{}

	params map[string]engine.ParamValue

	sols []solSnap
	term engine.TermCode
}

// New validates opts, builds the engine, and returns an empty model.
func New(opts Options) (*Model, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("model: engine factory is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	eng, err := opts.Engine()
	if err != nil {
		return nil, fmt.Errorf("model: engine: %w", err)
	}
	m := &Model{
		eng:     eng,
		factory: opts.Engine,
		log:     log,
		cols:    arena.New(),
		rows:    arena.New(),
		objCols: make(map[int]struct{}),
		objBars: make(map[[2]int]struct{}),
		params:  make(map[string]engine.ParamValue),
	}
	m.log.Debug("model ready")
	return m, nil
}

// Engine exposes the backing engine for direct inspection.
// Mutating it bypasses the model's bookkeeping.
func (m *Model) Engine() engine.Engine { return m.eng }

// NumVariables counts the live variables, matrix elements included.
func (m *Model) NumVariables() int {
	n := 0
	for i := range m.vars {
		if m.vars[i].live {
			n++
		}
	}
	return n
}

// NumConstraints counts the live constraints.
func (m *Model) NumConstraints() int {
	n := 0
	for i := range m.cons {
		if m.cons[i].live {
			n++
		}
	}
	return n
}

// VariableIDs lists the live variable identifiers in creation order.
func (m *Model) VariableIDs() []VarID {
	ids := make([]VarID, 0, len(m.vars))
	for i := range m.vars {
		if m.vars[i].live {
			ids = append(ids, VarID(i+1))
		}
	}
	return ids
}

// ConstraintIDs lists the live constraint identifiers in creation order.
func (m *Model) ConstraintIDs() []ConID {
	ids := make([]ConID, 0, len(m.cons))
	for i := range m.cons {
		if m.cons[i].live {
			ids = append(ids, ConID(i+1))
		}
	}
	return ids
}

// Solve runs the engine and snapshots every solution it published.
// Solutions from an earlier Solve are replaced, not merged.
func (m *Model) Solve() (*Report, error) {
	start := time.Now()
	m.log.Debug("solve begin",
		"cols", m.eng.NumCols(), "rows", m.eng.NumRows(),
		"vars", m.NumVariables(), "cons", m.NumConstraints())

	code, err := m.eng.Solve()
	if err != nil {
		m.log.Warn("solve failed", "err", err)
		return nil, fmt.Errorf("model: solve: %w", err)
	}

	m.sols = m.sols[:0]
	for _, t := range []engine.SolType{engine.SolInterior, engine.SolBasic, engine.SolInteger} {
		if !m.eng.HasSolution(t) {
			continue
		}
		raw, err := m.eng.Solution(t)
		if err != nil {
			return nil, fmt.Errorf("model: solution %v: %w", t, err)
		}
		raw.Normalize()
		if !raw.Defined() {
			continue
		}
		m.sols = append(m.sols, solSnap{kind: t, raw: raw})
	}
	sort.SliceStable(m.sols, func(i, j int) bool {
		a, b := &m.sols[i], &m.sols[j]
		ap, bp := a.raw.Status.IsProvenOptimal(), b.raw.Status.IsProvenOptimal()
		if ap != bp {
			return ap
		}
		return kindRank(a.kind) > kindRank(b.kind)
	})
	m.term = code

	m.log.Info("solve end",
		"term", code.String(), "solutions", len(m.sols),
		"elapsed", time.Since(start))
	return m.report(), nil
}

// Reset rebuilds the engine from the factory and replays the parameter
// dictionary, then drops every variable, constraint, and solution.
// On failure the model keeps its current engine and state.
func (m *Model) Reset() error {
	fresh, err := m.factory()
	if err != nil {
		return fmt.Errorf("model: reset engine: %w", err)
	}
	names := make([]string, 0, len(m.params))
	for name := range m.params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := fresh.PutParam(name, m.params[name]); err != nil {
			fresh.Close()
			return fmt.Errorf("model: reset replay %q: %w", name, err)
		}
	}
	m.eng.Close()
	m.eng = fresh
	m.cols = arena.New()
	m.rows = arena.New()
	m.vars = m.vars[:0]
	m.cons = m.cons[:0]
	m.objCols = make(map[int]struct{})
	m.objBars = make(map[[2]int]struct{})
	m.sols = nil
	m.term = engine.TermSuccess
	m.log.Info("model reset", "params", len(names))
	return nil
}

// Close releases the engine. The model must not be used afterwards.
func (m *Model) Close() error {
	m.sols = nil
	return m.eng.Close()
}

func (m *Model) variable(v VarID) (*varRec, error) {
	if v < 1 || int(v) > len(m.vars) {
		return nil, fmt.Errorf("%w: variable %d", ErrInvalidReference, v)
	}
	rec := &m.vars[v-1]
	if !rec.live {
		return nil, fmt.Errorf("%w: variable %d is deleted", ErrInvalidReference, v)
	}
	return rec, nil
}

func (m *Model) constraint(c ConID) (*conRec, error) {
	if c < 1 || int(c) > len(m.cons) {
		return nil, fmt.Errorf("%w: constraint %d", ErrInvalidReference, c)
	}
	rec := &m.cons[c-1]
	if !rec.live {
		return nil, fmt.Errorf("%w: constraint %d is deleted", ErrInvalidReference, c)
	}
	return rec, nil
}

func (m *Model) column(rec *varRec) int {
	return m.cols.Resolve(rec.col, 0)
}

// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

// BoundKey classifies the bound pair attached to one column or row.
type BoundKey int8

const (
	BoundFree  BoundKey = iota // no finite bound on either side
	BoundLower                 // finite lower bound only
	BoundUpper                 // finite upper bound only
	BoundRange                 // finite bounds on both sides, lo < up
	BoundFixed                 // both sides finite and equal
)

func (k BoundKey) String() string {
	switch k {
	case BoundFree:
		return "free"
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	case BoundRange:
		return "range"
	case BoundFixed:
		return "fixed"
	}
	return "unknown"
}

// ConeType identifies one cone family. The power families carry a
// parameter (the exponent); the others ignore it.
type ConeType int8

const (
	ConeQuad        ConeType = iota // second-order cone
	ConeRotatedQuad                 // rotated second-order cone
	ConeGeoMean                     // geometric mean cone
	ConePExp                        // primal exponential cone
	ConeDExp                        // dual exponential cone
	ConePPow                        // primal power cone, exponent par
	ConeDPow                        // dual power cone, exponent par
)

func (c ConeType) String() string {
	switch c {
	case ConeQuad:
		return "quad"
	case ConeRotatedQuad:
		return "rquad"
	case ConeGeoMean:
		return "geomean"
	case ConePExp:
		return "pexp"
	case ConeDExp:
		return "dexp"
	case ConePPow:
		return "ppow"
	case ConeDPow:
		return "dpow"
	}
	return "unknown"
}

// Sense is the optimization direction of the objective.
type Sense int8

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// SolType names one of the solution kinds an engine may publish
// after a solve. An engine reports any subset of them.
type SolType int8

const (
	SolInterior SolType = iota // continuous relaxation / interior style
	SolBasic                   // vertex solution with basis statuses
	SolInteger                 // integer-feasible solution, no duals
)

func (t SolType) String() string {
	switch t {
	case SolInterior:
		return "interior"
	case SolBasic:
		return "basic"
	case SolInteger:
		return "integer"
	}
	return "unknown"
}

// SolStatus qualifies how much a published solution proves.
type SolStatus int8

const (
	StatusUnknown SolStatus = iota
	StatusOptimal
	StatusPrimalFeasible
	StatusDualFeasible
	StatusPrimalAndDualFeasible
	StatusPrimalInfeasibleCert // solution certifies primal infeasibility
	StatusDualInfeasibleCert   // solution certifies dual infeasibility (unboundedness)
)

// IsProvenOptimal reports whether the status certifies optimality.
func (s SolStatus) IsProvenOptimal() bool { return s == StatusOptimal }

func (s SolStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOptimal:
		return "optimal"
	case StatusPrimalFeasible:
		return "primal feasible"
	case StatusDualFeasible:
		return "dual feasible"
	case StatusPrimalAndDualFeasible:
		return "primal and dual feasible"
	case StatusPrimalInfeasibleCert:
		return "primal infeasible"
	case StatusDualInfeasibleCert:
		return "dual infeasible"
	}
	return "unknown"
}

// StatusKey is the per-column or per-row basis code of a solution.
type StatusKey int8

const (
	KeyUnknown StatusKey = iota
	KeyBasic
	KeyAtLower
	KeyAtUpper
	KeyFixed
	KeySuperbasic
)

func (k StatusKey) String() string {
	switch k {
	case KeyUnknown:
		return "unknown"
	case KeyBasic:
		return "basic"
	case KeyAtLower:
		return "at lower"
	case KeyAtUpper:
		return "at upper"
	case KeyFixed:
		return "fixed"
	case KeySuperbasic:
		return "superbasic"
	}
	return "unknown"
}

// TermCode reports why a solve stopped. Problem-status outcomes such as
// infeasibility are not termination codes: they surface as solution
// statuses on the published solutions.
type TermCode int8

const (
	TermSuccess TermCode = iota
	TermIterationLimit
	TermTimeLimit
	TermStall
)

func (c TermCode) String() string {
	switch c {
	case TermSuccess:
		return "success"
	case TermIterationLimit:
		return "iteration limit"
	case TermTimeLimit:
		return "time limit"
	case TermStall:
		return "stall"
	}
	return "unknown"
}

// ParamKind tags the payload carried by a ParamValue.
type ParamKind int8

const (
	ParamInt ParamKind = iota
	ParamFloat
	ParamStr
)

// ParamValue is one engine parameter value: an integer, a float or a
// string, tagged by Kind. Use the constructors.
type ParamValue struct {
	Kind  ParamKind
	Int   int
	Float float64
	Str   string
}

// IntParam wraps an integer parameter value.
func IntParam(v int) ParamValue { return ParamValue{Kind: ParamInt, Int: v} }

// FloatParam wraps a floating-point parameter value.
func FloatParam(v float64) ParamValue { return ParamValue{Kind: ParamFloat, Float: v} }

// StrParam wraps a string parameter value.
func StrParam(v string) ParamValue { return ParamValue{Kind: ParamStr, Str: v} }

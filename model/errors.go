// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "errors"

var (
	// ErrInvalidReference reports a variable or constraint id that is
	// unknown, deleted, or of the wrong flavor for the operation.
	ErrInvalidReference = errors.New("model: unknown or deleted reference")

	// ErrIncompatibleDomain reports a domain kind the operation cannot take,
	// such as a cone domain on a scalar attachment.
	ErrIncompatibleDomain = errors.New("model: domain kind incompatible with this operation")

	// ErrDomainMismatch reports a SetDomain replacement whose kind or shape
	// differs from the attached domain.
	ErrDomainMismatch = errors.New("model: replacement domain must match the attached one")

	// ErrUnsupportedOperation reports an operation the entity's current
	// state rules out, such as deleting a matrix-cone member.
	ErrUnsupportedOperation = errors.New("model: operation not supported for this entity")

	// ErrDimensionMismatch reports slices whose lengths do not agree with
	// each other or with the domain dimension.
	ErrDimensionMismatch = errors.New("model: dimensions do not agree")

	// ErrVariableInCone reports a variable operation blocked by live cone
	// membership.
	ErrVariableInCone = errors.New("model: variable belongs to a cone")

	// ErrDualUnavailable reports a dual read from a solution kind that
	// carries no duals.
	ErrDualUnavailable = errors.New("model: solution kind carries no duals")

	// ErrNoSolution reports a solution index with no published solution.
	ErrNoSolution = errors.New("model: no such solution")
)

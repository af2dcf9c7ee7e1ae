// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

// Direction selects which way Reorder permutes elements.
type Direction int8

const (
	ToEngine Direction = iota
	ToCaller
)

// Reorder permutes a tuple between caller element order and engine element
// order for the given domain kind. It never mutates v; a fresh slice is
// returned even for the identity families so callers may edit the result.
//
// Rotated-quadratic and geometric-mean tuples rotate by one position, the
// leading caller element moving to the back. Exponential tuples reverse.
// PSD tuples permute through the packed-triangle anti-transpose, which is
// self-inverse. Every other kind keeps its order. Round-tripping any tuple
// through both directions is the identity.
func Reorder[T any](v []T, k Kind, dir Direction) []T {
	out := make([]T, len(v))
	switch k {
	case KindRotatedQuad, KindGeoMean:
		if len(v) < 2 {
			copy(out, v)
			break
		}
		if dir == ToEngine {
			copy(out, v[1:])
			out[len(v)-1] = v[0]
		} else {
			out[0] = v[len(v)-1]
			copy(out[1:], v[:len(v)-1])
		}
	case KindExp, KindDualExp:
		for i := range v {
			out[len(v)-1-i] = v[i]
		}
	case KindPSD:
		n, ok := TriSide(len(v))
		if !ok {
			panic("domain: length is not a packed triangle")
		}
		for k0 := range v {
			out[TriToEngine(k0, n)] = v[k0]
		}
	default:
		copy(out, v)
	}
	return out
}

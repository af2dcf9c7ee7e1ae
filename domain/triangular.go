// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import "math"

// Packed triangle offsets are 0-based. Callers pack the upper triangle of a
// symmetric matrix column by column: entry (i, j) with i <= j sits at offset
// j(j+1)/2 + i. The engine packs the lower triangle column by column, which
// is the same layout read through the anti-transpose (i, j) -> (n-1-j, n-1-i).

// TriPack returns the packed offset of upper-triangle entry (i, j), i <= j.
// Panics when the entry lies below the diagonal.
func TriPack(i, j int) int {
	if i < 0 || j < i {
		panic("domain: entry below the diagonal")
	}
	return j*(j+1)/2 + i
}

// TriUnpack inverts TriPack. The float64 guess is exact at every triangle
// boundary (8k+1 is then a perfect square), and the integer guards pin the
// result for any k where rounding could stray.
func TriUnpack(k int) (i, j int) {
	if k < 0 {
		panic("domain: negative packed offset")
	}
	j = int((math.Sqrt(float64(8*k+1)) - 1) / 2)
	for j*(j+1)/2 > k {
		j--
	}
	for (j+1)*(j+2)/2 <= k {
		j++
	}
	return k - j*(j+1)/2, j
}

// TriSide returns the matrix side n with n(n+1)/2 == length.
func TriSide(length int) (n int, ok bool) {
	if length < 1 {
		return 0, false
	}
	n = int((math.Sqrt(float64(8*length+1)) - 1) / 2)
	for n*(n+1)/2 > length {
		n--
	}
	for (n+1)*(n+2)/2 <= length {
		n++
	}
	return n, n*(n+1)/2 == length
}

// TriToEngine maps a caller packed offset to the engine packed offset for an
// n×n matrix, through the anti-transpose. The map is its own inverse, so it
// also carries engine offsets back to caller offsets.
func TriToEngine(k, n int) int {
	i, j := TriUnpack(k)
	if j >= n {
		panic("domain: packed offset outside the triangle")
	}
	return TriPack(n-1-j, n-1-i)
}

// BarCoeff maps a caller packed offset and coefficient to the engine entry
// for an n×n matrix block. Off-diagonal coefficients are halved here, and
// only here: the engine accounts for symmetry by counting packed
// off-diagonal entries twice.
func BarCoeff(k, n int, v float64) (int, float64) {
	i, j := TriUnpack(k)
	if j >= n {
		panic("domain: packed offset outside the triangle")
	}
	if i != j {
		v /= 2
	}
	return TriPack(n-1-j, n-1-i), v
}

// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erasure

import "errors"

// ErrSingularMatrix is returned when a generator submatrix selected by a
// set of shard indices cannot be inverted (the k chosen indices do not
// form a valid erasure-decoding set).
var ErrSingularMatrix = errors.New("erasure: singular matrix")

// matrix is a dense matrix over GF(2^16), row-major.
type matrix [][]uint16

func newMatrix(rows, cols int) matrix {
	m := make(matrix, rows)
	for i := range m {
		m[i] = make([]uint16, cols)
	}
	return m
}

// vandermonde builds an (rows x cols) Vandermonde matrix over GF(2^16)
// using distinct nonzero evaluation points 1..rows, the standard
// construction for a systematic Reed-Solomon generator (Plank, "A
// Tutorial on Reed-Solomon Coding for Fault-Tolerance").
func vandermonde(rows, cols int) matrix {
	m := newMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		x := uint16(i + 1)
		p := uint16(1)
		for j := 0; j < cols; j++ {
			m[i][j] = p
			p = gfMul(p, x)
		}
	}
	return m
}

func (m matrix) mul(other matrix) matrix {
	rows := len(m)
	inner := len(other)
	cols := 0
	if inner > 0 {
		cols = len(other[0])
	}
	out := newMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var acc uint16
			for x := 0; x < inner; x++ {
				acc ^= gfMul(m[i][x], other[x][j])
			}
			out[i][j] = acc
		}
	}
	return out
}

func (m matrix) mulVec(v []uint16) []uint16 {
	out := make([]uint16, len(m))
	for i := range m {
		var acc uint16
		for j, coeff := range m[i] {
			acc ^= gfMul(coeff, v[j])
		}
		out[i] = acc
	}
	return out
}

// invert computes the inverse of a square matrix via Gauss-Jordan
// elimination over GF(2^16).
func (m matrix) invert() (matrix, error) {
	n := len(m)
	aug := newMatrix(n, 2*n)
	for i := 0; i < n; i++ {
		copy(aug[i][:n], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if aug[row][col] != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return nil, ErrSingularMatrix
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := gfInv(aug[col][col])
		for k := 0; k < 2*n; k++ {
			aug[col][k] = gfMul(aug[col][k], inv)
		}

		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 2*n; k++ {
				aug[row][k] ^= gfMul(factor, aug[col][k])
			}
		}
	}

	out := newMatrix(n, n)
	for i := 0; i < n; i++ {
		copy(out[i], aug[i][n:])
	}
	return out, nil
}

// buildSystematic returns the (n x k) systematic Reed-Solomon generator
// matrix: its top k rows form the identity, so the first k output shards
// equal the input data shards verbatim and the remaining n-k rows carry
// parity.
func buildSystematic(n, k int) (matrix, error) {
	v := vandermonde(n, k)
	top := newMatrix(k, k)
	for i := 0; i < k; i++ {
		copy(top[i], v[i])
	}
	topInv, err := top.invert()
	if err != nil {
		return nil, err
	}
	return v.mul(topInv), nil
}

// Package matutil provides numeric helpers shared by the filters.
package matutil

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PSDTol is the tolerance on negative eigenvalues when checking positive semi-definiteness.
const PSDTol = 1e-9

// Symmetrize returns (m + mᵀ)/2 as a symmetric matrix.
// It panics if m is not square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	r, c := m.Dims()
	if r != c {
		panic(mat.ErrShape)
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return s
}

// IsSymmetric reports whether square matrix m is symmetric within tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// IsPSD reports whether s is positive semi-definite, i.e. whether
// all of its eigenvalues are greater than or equal to -tol.
func IsPSD(s mat.Symmetric, tol float64) bool {
	if s.Symmetric() == 0 {
		return true
	}

	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return false
	}

	for _, v := range es.Values(nil) {
		if v < -tol || math.IsNaN(v) {
			return false
		}
	}

	return true
}

// IsFinite reports whether all elements of m are finite.
func IsFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	return true
}

// CloneSym returns a copy of s.
func CloneSym(s mat.Symmetric) *mat.SymDense {
	c := mat.NewSymDense(s.Symmetric(), nil)
	c.CopySym(s)

	return c
}

// CloneVec returns a copy of v.
func CloneVec(v mat.Vector) *mat.VecDense {
	c := &mat.VecDense{}
	c.CloneVec(v)

	return c
}

// Identity returns n x n identity matrix.
func Identity(n int) *mat.DiagDense {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1.0
	}

	return mat.NewDiagDense(n, d)
}

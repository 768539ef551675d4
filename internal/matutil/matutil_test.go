package matutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSymmetrize(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 2, []float64{1.0, 2.0, 4.0, 3.0})
	s := Symmetrize(m)
	assert.Equal(2, s.Symmetric())
	assert.InDelta(3.0, s.At(0, 1), 1e-12)
	assert.InDelta(3.0, s.At(1, 0), 1e-12)
	assert.True(IsSymmetric(s, 0))
	assert.False(IsSymmetric(m, 1e-9))

	assert.Panics(func() { Symmetrize(mat.NewDense(2, 3, nil)) })
}

func TestIsPSD(t *testing.T) {
	testCases := []struct {
		name string
		s    *mat.SymDense
		psd  bool
	}{
		{"identity", mat.NewSymDense(2, []float64{1, 0, 0, 1}), true},
		{"zero", mat.NewSymDense(2, nil), true},
		{"singular", mat.NewSymDense(2, []float64{1, 1, 1, 1}), true},
		{"indefinite", mat.NewSymDense(2, []float64{1, 2, 2, 1}), false},
		{"negative", mat.NewSymDense(1, []float64{-0.5}), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.psd, IsPSD(tc.s, PSDTol))
		})
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(mat.NewVecDense(2, []float64{1, 2})))
	assert.False(t, IsFinite(mat.NewVecDense(2, []float64{1, math.NaN()})))
	assert.False(t, IsFinite(mat.NewVecDense(2, []float64{math.Inf(1), 2})))
}

func TestClone(t *testing.T) {
	s := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 2})
	c := CloneSym(s)
	c.SetSym(0, 0, 10)
	assert.Equal(t, 1.0, s.At(0, 0))

	v := mat.NewVecDense(2, []float64{1, 2})
	cv := CloneVec(v)
	cv.SetVec(0, 10)
	assert.Equal(t, 1.0, v.AtVec(0))

	id := Identity(3)
	assert.Equal(t, 3.0, mat.Trace(id))
}

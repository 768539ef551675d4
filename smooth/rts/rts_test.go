package rts

import (
	"math"
	"testing"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/estimate"
	"github.com/marco-hrlic/go-belief/kalman/kf"
	"github.com/marco-hrlic/go-belief/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func ballModel(t *testing.T) *model.Linear {
	a := mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	b := mat.NewDense(2, 1, []float64{0.5, 1.0})
	h := mat.NewDense(1, 2, []float64{1.0, 0.0})
	q := mat.NewSymDense(2, []float64{0.01, 0, 0, 0.01})
	r := mat.NewSymDense(1, []float64{0.25})

	m, err := model.NewLinear(a, b, h, q, r)
	require.NoError(t, err)

	return m
}

func runKF(t *testing.T, m *model.Linear, steps int) (filtered, predicted []filter.Estimate) {
	init := model.NewInitCond(mat.NewVecDense(2, []float64{100, 0}), mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	f, err := kf.New(m, init)
	require.NoError(t, err)

	u := mat.NewVecDense(1, []float64{-1.0})
	for i := 0; i < steps; i++ {
		require.NoError(t, f.Predict(u))
		predicted = append(predicted, f.Predicted())

		// measurements of a ball falling from 100 with small deterministic wiggle
		k := float64(i + 1)
		z := mat.NewVecDense(1, []float64{100 - 0.5*k*k + 0.3*math.Sin(k)})
		est, err := f.Update(z)
		require.NoError(t, err)
		filtered = append(filtered, est)
	}

	return filtered, predicted
}

func TestSmooth(t *testing.T) {
	m := ballModel(t)
	filtered, predicted := runKF(t, m, 20)

	s, err := New(m)
	require.NoError(t, err)

	smoothed, err := s.Smooth(filtered, predicted)
	require.NoError(t, err)
	require.Len(t, smoothed, 20)

	last := len(smoothed) - 1
	assert.True(t, mat.EqualApprox(filtered[last].Val(), smoothed[last].Val(), 1e-12))
	assert.True(t, mat.EqualApprox(filtered[last].Cov(), smoothed[last].Cov(), 1e-12))

	for k := range smoothed {
		assert.LessOrEqual(t, mat.Trace(smoothed[k].Cov()), mat.Trace(filtered[k].Cov())+1e-12, "step %d", k)
	}

	// smoothing reduces uncertainty of early steps
	assert.Less(t, mat.Trace(smoothed[0].Cov()), mat.Trace(filtered[0].Cov()))
}

func TestSmoothInvalid(t *testing.T) {
	m := ballModel(t)
	filtered, predicted := runKF(t, m, 3)

	s, err := New(m)
	require.NoError(t, err)

	_, err = s.Smooth(nil, nil)
	assert.ErrorIs(t, err, filter.ErrDimensionMismatch)

	_, err = s.Smooth(filtered, predicted[:2])
	assert.ErrorIs(t, err, filter.ErrDimensionMismatch)

	bad, err := estimate.NewBase(mat.NewVecDense(3, nil))
	require.NoError(t, err)
	_, err = s.Smooth([]filter.Estimate{bad}, []filter.Estimate{bad})
	assert.ErrorIs(t, err, filter.ErrDimensionMismatch)

	zero, err := estimate.NewBase(mat.NewVecDense(2, nil))
	require.NoError(t, err)
	_, err = s.Smooth(filtered[:2], []filter.Estimate{predicted[0], zero})
	assert.ErrorIs(t, err, filter.ErrSingularCovariance)

	_, err = New(nil)
	assert.ErrorIs(t, err, filter.ErrInvalidConfig)
}

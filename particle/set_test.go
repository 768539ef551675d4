package particle

import (
	"math"
	"testing"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestNormalize(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		w := make([]float64, 1+rnd.Intn(1000))
		for j := range w {
			w[j] = rnd.ExpFloat64() * math.Pow(10, float64(rnd.Intn(10)-5))
		}

		norm, err := Normalize(w)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, floats.Sum(norm), NormTol)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	testCases := []struct {
		name    string
		weights []float64
	}{
		{"empty", nil},
		{"zero", []float64{0, 0, 0}},
		{"nan", []float64{1, math.NaN(), 1}},
		{"negative", []float64{1, -1, 1}},
		{"inf", []float64{1, math.Inf(1), 1}},
		{"overflow", []float64{math.MaxFloat64, math.MaxFloat64}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.weights)
			assert.ErrorIs(t, err, filter.ErrDegenerateWeights)
		})
	}
}

func TestNewSet(t *testing.T) {
	assert := assert.New(t)

	states := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	weights := []float64{1, 2, 3}

	s, err := NewSet(states, weights)
	require.NoError(t, err)
	assert.Equal(3, s.Len())
	assert.Equal(2, s.Dim())

	p := s.Particle(1)
	assert.Equal([]float64{2, 5}, p.State)
	assert.Equal(2.0, p.Weight)
	assert.Equal(3.0, s.State(2).AtVec(0))

	// the set owns its storage
	states.Set(0, 0, 100)
	weights[0] = 100
	p.State[0] = 100
	assert.Equal(1.0, s.States().At(0, 0))
	assert.Equal(1.0, s.Weights()[0])
	assert.Equal(2.0, s.Particle(1).State[0])

	c := s.Clone()
	assert.True(mat.Equal(s.States(), c.States()))

	_, err = NewSet(states, []float64{1})
	assert.ErrorIs(err, filter.ErrDimensionMismatch)
	_, err = NewSet(states, []float64{1, -1, 1})
	assert.ErrorIs(err, filter.ErrDegenerateWeights)
}

func TestSetMoments(t *testing.T) {
	assert := assert.New(t)

	states := mat.NewDense(2, 4, []float64{
		0, 2, 4, 100,
		1, 1, 1, 100,
	})
	s, err := NewSet(states, []float64{1, 1, 0, 0})
	require.NoError(t, err)

	mean := s.Mean(3)
	assert.InDelta(2.0, mean.AtVec(0), 1e-12)
	assert.InDelta(1.0, mean.AtVec(1), 1e-12)

	cov := s.Cov(3)
	assert.InDelta(4.0, cov.At(0, 0), 1e-12)
	assert.InDelta(0.0, cov.At(1, 1), 1e-12)
	assert.Equal(0.0, mat.Trace(s.Cov(1)))

	wmean, err := s.WeightedMean()
	require.NoError(t, err)
	assert.InDelta(1.0, wmean.AtVec(0), 1e-12)
	assert.InDelta(1.0, wmean.AtVec(1), 1e-12)

	assert.Panics(func() { s.Mean(0) })
	assert.Panics(func() { s.Cov(5) })
}

func TestSample(t *testing.T) {
	prior, err := noise.NewUniform([]float64{0, 0}, []float64{10, 10}, 1)
	require.NoError(t, err)

	s, err := Sample(500, prior, rand.NewSource(3))
	require.NoError(t, err)
	assert.Equal(t, 500, s.Len())
	assert.Equal(t, 2, s.Dim())
	assert.InDelta(t, 1.0, floats.Sum(s.Weights()), NormTol)

	for i := 0; i < s.Len(); i++ {
		p := s.Particle(i)
		assert.True(t, p.State[0] >= 0 && p.State[0] <= 10)
		assert.Equal(t, s.Weights()[0], p.Weight)
	}

	_, err = Sample(0, prior, rand.NewSource(3))
	assert.ErrorIs(t, err, filter.ErrInvalidConfig)
	_, err = Sample(10, nil, rand.NewSource(3))
	assert.ErrorIs(t, err, filter.ErrInvalidConfig)
}

package particle

import (
	"fmt"
	"math"

	filter "github.com/marco-hrlic/go-belief"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NormTol is the tolerance of the sum of normalized weights
const NormTol = 1e-9

// Particle is a single state hypothesis with its weight
type Particle struct {
	// State is particle state
	State []float64
	// Weight is particle weight relative to its siblings
	Weight float64
}

// Set is a fixed size set of weighted particles.
// Particle states are stored in columns of a single matrix.
type Set struct {
	// states stores particle states in columns
	states *mat.Dense
	// weights stores particle weights
	weights []float64
}

// NewSet creates new particle set from states stored in columns and their weights and returns it.
// Both states and weights are copied.
// It returns error if the number of weights does not match the number of particles,
// or if any weight is negative or not a number.
func NewSet(states mat.Matrix, weights []float64) (*Set, error) {
	n, m := states.Dims()
	if n == 0 || m == 0 {
		return nil, fmt.Errorf("Invalid particle set dimensions: [%d x %d]: %w", n, m, filter.ErrInvalidConfig)
	}

	if len(weights) != m {
		return nil, fmt.Errorf("Invalid number of weights %d for %d particles: %w", len(weights), m, filter.ErrDimensionMismatch)
	}

	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("Invalid weight %f of particle %d: %w", w, i, filter.ErrDegenerateWeights)
		}
	}

	return &Set{
		states:  mat.DenseCopyOf(states),
		weights: append([]float64(nil), weights...),
	}, nil
}

// Sample draws m particles from prior using src and returns them as a particle set with equal weights.
// It returns error if m is not positive.
func Sample(m int, prior filter.Sampler, src rand.Source) (*Set, error) {
	if m <= 0 {
		return nil, fmt.Errorf("Invalid number of particles: %d: %w", m, filter.ErrInvalidConfig)
	}

	if prior == nil || prior.Dim() <= 0 {
		return nil, fmt.Errorf("Invalid prior: %w", filter.ErrInvalidConfig)
	}

	states := mat.NewDense(prior.Dim(), m, nil)
	weights := make([]float64, m)

	for i := 0; i < m; i++ {
		states.SetCol(i, mat.Col(nil, 0, prior.SampleWith(src)))
		weights[i] = 1.0 / float64(m)
	}

	return &Set{
		states:  states,
		weights: weights,
	}, nil
}

// Len returns the number of particles
func (s *Set) Len() int {
	return len(s.weights)
}

// Dim returns particle state dimension
func (s *Set) Dim() int {
	n, _ := s.states.Dims()

	return n
}

// Particle returns a copy of i-th particle
func (s *Set) Particle(i int) Particle {
	return Particle{
		State:  mat.Col(nil, i, s.states),
		Weight: s.weights[i],
	}
}

// State returns a copy of i-th particle state
func (s *Set) State(i int) *mat.VecDense {
	return mat.NewVecDense(s.Dim(), mat.Col(nil, i, s.states))
}

// States returns a copy of particle states stored in columns
func (s *Set) States() *mat.Dense {
	return mat.DenseCopyOf(s.states)
}

// Weights returns a copy of particle weights
func (s *Set) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Clone returns a deep copy of the set
func (s *Set) Clone() *Set {
	return &Set{
		states:  mat.DenseCopyOf(s.states),
		weights: s.Weights(),
	}
}

// Mean returns unweighted mean of the states of the first k particles.
// It panics if k is out of range.
func (s *Set) Mean(k int) *mat.VecDense {
	if k <= 0 || k > s.Len() {
		panic(fmt.Sprintf("particle: invalid number of particles %d", k))
	}

	mean := mat.NewVecDense(s.Dim(), nil)
	for i := 0; i < s.Dim(); i++ {
		row := mat.Row(nil, i, s.states)
		mean.SetVec(i, floats.Sum(row[:k])/float64(k))
	}

	return mean
}

// Cov returns unweighted sample covariance of the states of the first k particles.
// It returns zero matrix if k is less than 2 and panics if k is out of range.
func (s *Set) Cov(k int) *mat.SymDense {
	if k <= 0 || k > s.Len() {
		panic(fmt.Sprintf("particle: invalid number of particles %d", k))
	}

	cov := mat.NewSymDense(s.Dim(), nil)
	if k < 2 {
		return cov
	}

	obs := s.states.Slice(0, s.Dim(), 0, k).T()
	stat.CovarianceMatrix(cov, obs, nil)

	return cov
}

// WeightedMean returns weighted mean of particle states.
// It returns error if the weights can not be normalized.
func (s *Set) WeightedMean() (*mat.VecDense, error) {
	w, err := Normalize(s.weights)
	if err != nil {
		return nil, err
	}

	mean := mat.NewVecDense(s.Dim(), nil)
	mean.MulVec(s.states, mat.NewVecDense(len(w), w))

	return mean, nil
}

// Normalize returns weights scaled to sum to 1.
// It returns ErrDegenerateWeights if any weight is negative or not a number,
// or if the sum of weights is zero or not finite.
func Normalize(weights []float64) ([]float64, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("No weights to normalize: %w", filter.ErrDegenerateWeights)
	}

	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("Invalid weight %f of particle %d: %w", w, i, filter.ErrDegenerateWeights)
		}
	}

	sum := floats.Sum(weights)
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil, fmt.Errorf("Invalid sum of weights %f: %w", sum, filter.ErrDegenerateWeights)
	}

	w := append([]float64(nil), weights...)
	floats.Scale(1/sum, w)

	return w, nil
}

// Package resample implements particle set resampling strategies.
package resample

import (
	"fmt"
	"math"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/particle"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// draw normalizes the weights of s and draws s.Len() particle indices
// with replacement, index i being drawn with probability proportional to its weight.
func draw(s *particle.Set, src rand.Source) ([]int, error) {
	w, err := particle.Normalize(s.Weights())
	if err != nil {
		return nil, err
	}

	cat := distuv.NewCategorical(w, src)

	idx := make([]int, len(w))
	for i := range idx {
		idx[i] = int(cat.Rand())
	}

	return idx, nil
}

// Multinomial is multinomial resampling: the whole new generation is drawn
// from the weighted set.
type Multinomial struct{}

var _ particle.Resampler = Multinomial{}

// Resample draws s.Len() particles from s with replacement and returns them with equal weights.
// It returns error if the weights of s can not be normalized.
func (Multinomial) Resample(s *particle.Set, src rand.Source) (*particle.Set, int, error) {
	idx, err := draw(s, src)
	if err != nil {
		return nil, 0, err
	}

	old := s.States()
	m := len(idx)

	states := mat.NewDense(s.Dim(), m, nil)
	weights := make([]float64, m)
	for i, j := range idx {
		states.SetCol(i, mat.Col(nil, j, old))
		weights[i] = 1.0 / float64(m)
	}

	next, err := particle.NewSet(states, weights)
	if err != nil {
		return nil, 0, err
	}

	return next, m, nil
}

// Diversity is multinomial resampling which keeps only floor(Alpha*M)
// of the drawn particles and replaces the rest with fresh samples from Prior.
// The fresh particles counter particle depletion.
type Diversity struct {
	// Alpha is the fraction of particles drawn from the weighted set
	Alpha float64
	// Prior samples the injected particles
	Prior filter.Sampler
}

var _ particle.Resampler = (*Diversity)(nil)

// NewDiversity creates new Diversity resampler and returns it.
// It returns error if alpha is outside [0,1] or if prior is nil while alpha is less than 1.
func NewDiversity(alpha float64, prior filter.Sampler) (*Diversity, error) {
	if !(alpha >= 0 && alpha <= 1) {
		return nil, fmt.Errorf("Invalid diversity fraction: %f: %w", alpha, filter.ErrInvalidConfig)
	}

	if alpha < 1 && prior == nil {
		return nil, fmt.Errorf("Prior is required to inject particles: %w", filter.ErrInvalidConfig)
	}

	return &Diversity{
		Alpha: alpha,
		Prior: prior,
	}, nil
}

// Kept returns the number of particles kept from a weighted set of m particles.
func (d *Diversity) Kept(m int) int {
	// tolerance absorbs alpha*m landing just below an integer
	k := int(math.Floor(d.Alpha*float64(m) + 1e-9))
	if k > m {
		k = m
	}

	return k
}

// Resample draws s.Len() particle indices from s with replacement, copies the first
// floor(Alpha*M) drawn particles into the new set and fills the rest with prior samples.
// Kept particles share equal weights summing to 1, injected particles have zero weight.
// It returns error if the weights of s can not be normalized or if a prior sample
// has different dimension than the particles.
func (d *Diversity) Resample(s *particle.Set, src rand.Source) (*particle.Set, int, error) {
	idx, err := draw(s, src)
	if err != nil {
		return nil, 0, err
	}

	old := s.States()
	m := len(idx)
	k := d.Kept(m)

	states := mat.NewDense(s.Dim(), m, nil)
	weights := make([]float64, m)

	for i := 0; i < k; i++ {
		states.SetCol(i, mat.Col(nil, idx[i], old))
		weights[i] = 1.0 / float64(k)
	}

	for i := k; i < m; i++ {
		x := d.Prior.SampleWith(src)
		if x.Len() != s.Dim() {
			return nil, 0, fmt.Errorf("Invalid prior sample length %d, expected %d: %w", x.Len(), s.Dim(), filter.ErrDimensionMismatch)
		}
		states.SetCol(i, mat.Col(nil, 0, x))
	}

	next, err := particle.NewSet(states, weights)
	if err != nil {
		return nil, 0, err
	}

	return next, k, nil
}

package noise

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform is uniform noise over an axis-aligned box
type Uniform struct {
	// min is lower bound of the box
	min []float64
	// max is upper bound of the box
	max []float64
	// seed is the seed of src
	seed uint64
	// src is the noise own source of randomness
	src rand.Source
}

var _ filter.Noise = (*Uniform)(nil)
var _ filter.Sampler = (*Uniform)(nil)

// NewUniform creates new Uniform noise over the box [min, max] and returns it.
// It returns error if the bounds have different lengths or if any min exceeds its max.
func NewUniform(min, max []float64, seed uint64) (*Uniform, error) {
	if len(min) == 0 || len(min) != len(max) {
		return nil, fmt.Errorf("Invalid uniform bounds: %d x %d: %w", len(min), len(max), filter.ErrDimensionMismatch)
	}

	for i := range min {
		if !(min[i] <= max[i]) {
			return nil, fmt.Errorf("Invalid uniform bounds in dimension %d: [%f, %f]: %w",
				i, min[i], max[i], filter.ErrInvalidConfig)
		}
	}

	return &Uniform{
		min:  append([]float64(nil), min...),
		max:  append([]float64(nil), max...),
		seed: seed,
		src:  rand.NewSource(seed),
	}, nil
}

// Dim returns noise dimension
func (u *Uniform) Dim() int {
	return len(u.min)
}

// Sample generates a sample from Uniform noise using its own source and returns it.
// Sample is not safe for concurrent use.
func (u *Uniform) Sample() mat.Vector {
	return u.SampleWith(u.src)
}

// SampleWith generates a sample from Uniform noise using src and returns it.
func (u *Uniform) SampleWith(src rand.Source) mat.Vector {
	sample := mat.NewVecDense(len(u.min), nil)
	for i := range u.min {
		d := distuv.Uniform{Min: u.min[i], Max: u.max[i], Src: src}
		sample.SetVec(i, d.Rand())
	}

	return sample
}

// Cov returns covariance matrix of Uniform noise
func (u *Uniform) Cov() mat.Symmetric {
	cov := mat.NewSymDense(len(u.min), nil)
	for i := range u.min {
		d := distuv.Uniform{Min: u.min[i], Max: u.max[i]}
		cov.SetSym(i, i, d.Variance())
	}

	return cov
}

// Bounds returns the box bounds
func (u *Uniform) Bounds() (min, max []float64) {
	return append([]float64(nil), u.min...), append([]float64(nil), u.max...)
}

// Reset reseeds the noise source so Sample replays the same sequence.
func (u *Uniform) Reset() error {
	u.src = rand.NewSource(u.seed)

	return nil
}

// String implements fmt.Stringer
func (u *Uniform) String() string {
	return fmt.Sprintf("Uniform{\nMin=%v\nMax=%v\n}", u.min, u.max)
}

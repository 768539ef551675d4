package estimate

import (
	"fmt"

	"github.com/milosgajdos83/matrix"
	"gonum.org/v1/gonum/mat"
)

// Particle is a particle filter estimate.
// Besides the point estimate and its spread it carries
// a snapshot of the particle set it was computed from.
type Particle struct {
	*Base
	// particles stores particle states in columns
	particles *mat.Dense
	// weights stores particle weights
	weights *mat.VecDense
	// kept is the number of particles the estimate was averaged over
	kept int
}

// NewParticle creates new particle estimate and returns it.
// It accepts the following parameters:
// - val:       state estimate
// - cov:       state covariance
// - particles: particle states stored in matrix columns
// - weights:   particle weights
// - kept:      number of particles the estimate was computed from
// It returns error if the dimensions of the parameters do not agree.
func NewParticle(val mat.Vector, cov mat.Symmetric, particles mat.Matrix, weights []float64, kept int) (*Particle, error) {
	base, err := NewBaseWithCov(val, cov)
	if err != nil {
		return nil, err
	}

	rows, cols := particles.Dims()
	if rows != val.Len() {
		return nil, fmt.Errorf("Invalid particle dimension: %d", rows)
	}

	if cols != len(weights) {
		return nil, fmt.Errorf("Invalid number of weights: %d, particles: %d", len(weights), cols)
	}

	if kept < 0 || kept > cols {
		return nil, fmt.Errorf("Invalid number of kept particles: %d", kept)
	}

	p := mat.DenseCopyOf(particles)
	w := mat.NewVecDense(len(weights), append([]float64(nil), weights...))

	return &Particle{
		Base:      base,
		particles: p,
		weights:   w,
		kept:      kept,
	}, nil
}

// Particles returns particle states stored in matrix columns
func (p *Particle) Particles() *mat.Dense {
	return mat.DenseCopyOf(p.particles)
}

// Weights returns particle weights
func (p *Particle) Weights() mat.Vector {
	w := &mat.VecDense{}
	w.CloneVec(p.weights)

	return w
}

// Kept returns the number of particles the estimate was averaged over
func (p *Particle) Kept() int {
	return p.kept
}

// String implements fmt.Stringer
func (p *Particle) String() string {
	return fmt.Sprintf("%s\nKept: %d\nWeights:\n%v", p.Base, p.kept, matrix.Format(p.weights))
}

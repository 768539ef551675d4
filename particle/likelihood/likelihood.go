// Package likelihood provides particle weighting functions.
package likelihood

import (
	"fmt"
	"math"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// DefaultFloor is the smallest distance InverseDistance divides by
const DefaultFloor = 1e-12

// InverseDistance weights a state by the inverse of its Euclidean distance
// to the measurement. The measurement must live in the state space.
// It is a heuristic score, not a probability density.
type InverseDistance struct {
	// Floor is the smallest distance used as divisor; DefaultFloor if zero
	Floor float64
}

var _ filter.Likelihood = InverseDistance{}

// Likelihood returns 1/max(‖x-z‖, Floor).
// It panics if x and z have different lengths.
func (l InverseDistance) Likelihood(x, z mat.Vector) float64 {
	if x.Len() != z.Len() {
		panic(mat.ErrShape)
	}

	floor := l.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}

	d := &mat.VecDense{}
	d.SubVec(x, z)

	return 1 / math.Max(mat.Norm(d, 2), floor)
}

// Gaussian weights a state by the Gaussian density of the measurement residual
// z - H*x under measurement noise covariance.
type Gaussian struct {
	// h is observation matrix
	h *mat.Dense
	// dist is zero mean residual distribution
	dist *distmv.Normal
}

var _ filter.Likelihood = (*Gaussian)(nil)

// NewGaussian creates new Gaussian likelihood and returns it.
// It accepts the following parameters:
// - h:   k x n observation matrix; identity if nil
// - cov: k x k positive definite measurement noise covariance
// It returns error if the dimensions do not agree or cov is not positive definite.
func NewGaussian(h mat.Matrix, cov mat.Symmetric) (*Gaussian, error) {
	if cov == nil || cov.Symmetric() == 0 {
		return nil, fmt.Errorf("Invalid measurement covariance: %w", filter.ErrInvalidConfig)
	}

	k := cov.Symmetric()
	if h == nil {
		h = matutil.Identity(k)
	}

	if r, _ := h.Dims(); r != k {
		return nil, fmt.Errorf("Invalid observation matrix rows %d, expected %d: %w", r, k, filter.ErrInvalidConfig)
	}

	dist, ok := distmv.NewNormal(make([]float64, k), cov, nil)
	if !ok {
		return nil, fmt.Errorf("Measurement covariance is not positive definite: %w", filter.ErrInvalidConfig)
	}

	return &Gaussian{
		h:    mat.DenseCopyOf(h),
		dist: dist,
	}, nil
}

// Dims returns measurement and state dimensions
func (g *Gaussian) Dims() (meas, state int) {
	return g.h.Dims()
}

// Likelihood returns N(z - H*x; 0, cov).
// It panics if x or z have invalid dimensions.
func (g *Gaussian) Likelihood(x, z mat.Vector) float64 {
	r := &mat.VecDense{}
	r.MulVec(g.h, x)
	r.SubVec(z, r)

	return g.dist.Prob(r.RawVector().Data)
}

package filter

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Filter is a recursive Bayesian filter.
type Filter interface {
	// Predict propagates the belief to the next step given control input
	Predict(mat.Vector) error
	// Update incorporates measurement into the belief and returns the new estimate
	Update(mat.Vector) (Estimate, error)
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is filter belief estimate
type Estimate interface {
	// Val returns estimated state
	Val() mat.Vector
	// Cov returns state covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Cov returns noise covariance matrix
	Cov() mat.Symmetric
	// Reset resets noise
	Reset() error
}

// Sampler draws random vectors from a distribution.
// Samplers are used concurrently by particle filters, so SampleWith
// must only use the source it is given.
type Sampler interface {
	// Dim returns dimension of sampled vectors
	Dim() int
	// SampleWith draws a sample using src as the source of randomness
	SampleWith(src rand.Source) mat.Vector
}

// Likelihood scores a state hypothesis x against measurement z.
// It must return a non-negative value. Likelihood must be safe for concurrent use.
type Likelihood interface {
	// Likelihood returns a non-negative weight of x given measurement z
	Likelihood(x, z mat.Vector) float64
}

// LikelihoodFunc is an adapter that allows plain functions to be used as Likelihood
type LikelihoodFunc func(x, z mat.Vector) float64

// Likelihood calls f(x, z)
func (f LikelihoodFunc) Likelihood(x, z mat.Vector) float64 {
	return f(x, z)
}

// Smoother is filter smoother
type Smoother interface {
	// Smooth smooths filtered estimates given the matching predicted ones
	Smooth(filtered, predicted []Estimate) ([]Estimate, error)
}

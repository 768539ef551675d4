package particle

import (
	filter "github.com/marco-hrlic/go-belief"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Filter is Particle Filter
type Filter interface {
	// filter.Filter is dynamical system filter
	filter.Filter
	// Particles returns particle states stored in matrix columns
	Particles() *mat.Dense
	// Weights returns particle weights
	Weights() mat.Vector
}

// Resampler draws a new particle generation from a weighted one
type Resampler interface {
	// Resample returns new particle set drawn from s using src and
	// the number of particles at the front of the new set which were
	// drawn from s; the remaining particles carry no evidence yet.
	// s must not be modified.
	Resample(s *Set, src rand.Source) (*Set, int, error)
}

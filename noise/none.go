package noise

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// None is zero noise
type None struct {
	dim int
}

var _ filter.Noise = (*None)(nil)
var _ filter.Sampler = (*None)(nil)

// NewNone creates new zero noise of dimension dim and returns it.
func NewNone(dim int) (*None, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("Invalid noise dimension: %d: %w", dim, filter.ErrInvalidConfig)
	}

	return &None{dim: dim}, nil
}

// Dim returns noise dimension
func (n *None) Dim() int {
	return n.dim
}

// Sample returns zero vector
func (n *None) Sample() mat.Vector {
	return mat.NewVecDense(n.dim, nil)
}

// SampleWith returns zero vector
func (n *None) SampleWith(rand.Source) mat.Vector {
	return mat.NewVecDense(n.dim, nil)
}

// Cov returns zero covariance matrix
func (n *None) Cov() mat.Symmetric {
	return mat.NewSymDense(n.dim, nil)
}

// Reset does nothing
func (n *None) Reset() error {
	return nil
}

// String implements fmt.Stringer
func (n *None) String() string {
	return fmt.Sprintf("None{Dim=%d}", n.dim)
}

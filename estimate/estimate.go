package estimate

import (
	"fmt"

	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/milosgajdos83/matrix"
	"gonum.org/v1/gonum/mat"
)

// Base is a Gaussian belief estimate: state mean and its covariance
type Base struct {
	// val is estimated state
	val *mat.VecDense
	// cov is state covariance
	cov *mat.SymDense
}

// NewBase creates new Base estimate from state val with zero covariance and returns it.
// It returns error if val is nil or empty.
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("Invalid estimate value: %v", val)
	}

	return &Base{
		val: matutil.CloneVec(val),
		cov: mat.NewSymDense(val.Len(), nil),
	}, nil
}

// NewBaseWithCov creates new Base estimate from state val and covariance cov and returns it.
// It returns error if the dimensions of val and cov do not match.
func NewBaseWithCov(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("Invalid estimate value: %v", val)
	}

	if cov == nil || cov.Symmetric() != val.Len() {
		return nil, fmt.Errorf("Invalid covariance for state of length %d", val.Len())
	}

	return &Base{
		val: matutil.CloneVec(val),
		cov: matutil.CloneSym(cov),
	}, nil
}

// Val returns estimated state
func (b *Base) Val() mat.Vector {
	return matutil.CloneVec(b.val)
}

// Cov returns state covariance
func (b *Base) Cov() mat.Symmetric {
	return matutil.CloneSym(b.cov)
}

// String implements fmt.Stringer
func (b *Base) String() string {
	return fmt.Sprintf("Val:\n%v\nCov:\n%v", matrix.Format(b.val), matrix.Format(b.cov))
}

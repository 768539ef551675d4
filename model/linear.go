package model

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/milosgajdos83/matrix"
	"gonum.org/v1/gonum/mat"
)

// Linear is a time-invariant linear system with Gaussian noise:
// x[t+1] = A*x[t] + B*u[t] + w, w ~ N(0, ProcessCov)
// z[t]   = H*x[t] + v,          v ~ N(0, MeasCov)
type Linear struct {
	// a is state propagation matrix
	a *mat.Dense
	// b is control matrix
	b *mat.Dense
	// h is observation matrix
	h *mat.Dense
	// q is process noise covariance
	q *mat.SymDense
	// r is measurement noise covariance
	r *mat.SymDense
}

// NewLinear creates new linear system model and returns it.
// It accepts the following parameters:
// - a:       n x n state propagation matrix
// - b:       n x m control matrix
// - h:       k x n observation matrix
// - process: n x n process noise covariance
// - meas:    k x k measurement noise covariance
// It returns error if either of the following conditions is met:
// - matrix dimensions do not agree with each other
// - either of the noise covariances is not positive semi-definite
func NewLinear(a, b, h mat.Matrix, process, meas mat.Symmetric) (*Linear, error) {
	if a == nil || b == nil || h == nil || process == nil || meas == nil {
		return nil, fmt.Errorf("Model matrices must not be nil: %w", filter.ErrInvalidConfig)
	}

	n, c := a.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("Invalid propagation matrix dimensions: [%d x %d]: %w", n, c, filter.ErrInvalidConfig)
	}

	if r, m := b.Dims(); r != n || m == 0 {
		return nil, fmt.Errorf("Invalid control matrix dimensions: [%d x %d]: %w", r, m, filter.ErrInvalidConfig)
	}

	k, c := h.Dims()
	if k == 0 || c != n {
		return nil, fmt.Errorf("Invalid observation matrix dimensions: [%d x %d]: %w", k, c, filter.ErrInvalidConfig)
	}

	if process.Symmetric() != n {
		return nil, fmt.Errorf("Invalid process noise dimension: %d: %w", process.Symmetric(), filter.ErrInvalidConfig)
	}

	if meas.Symmetric() != k {
		return nil, fmt.Errorf("Invalid measurement noise dimension: %d: %w", meas.Symmetric(), filter.ErrInvalidConfig)
	}

	for _, m := range []mat.Matrix{a, b, h, process, meas} {
		if !matutil.IsFinite(m) {
			return nil, fmt.Errorf("Model matrices must be finite: %w", filter.ErrInvalidConfig)
		}
	}

	if !matutil.IsPSD(process, matutil.PSDTol) {
		return nil, fmt.Errorf("Process noise covariance is not positive semi-definite: %w", filter.ErrInvalidConfig)
	}

	if !matutil.IsPSD(meas, matutil.PSDTol) {
		return nil, fmt.Errorf("Measurement noise covariance is not positive semi-definite: %w", filter.ErrInvalidConfig)
	}

	return &Linear{
		a: mat.DenseCopyOf(a),
		b: mat.DenseCopyOf(b),
		h: mat.DenseCopyOf(h),
		q: matutil.CloneSym(process),
		r: matutil.CloneSym(meas),
	}, nil
}

// Dims returns state, control and measurement dimensions of the model
func (l *Linear) Dims() (state, control, meas int) {
	state, control = l.b.Dims()
	meas, _ = l.h.Dims()

	return state, control, meas
}

// Propagate propagates state x to the next step given control input u and returns it.
// It returns error if either x or u have invalid dimensions.
func (l *Linear) Propagate(x, u mat.Vector) (mat.Vector, error) {
	n, m, _ := l.Dims()

	if x.Len() != n {
		return nil, fmt.Errorf("Invalid state vector length %d, expected %d: %w", x.Len(), n, filter.ErrDimensionMismatch)
	}

	if u.Len() != m {
		return nil, fmt.Errorf("Invalid control vector length %d, expected %d: %w", u.Len(), m, filter.ErrDimensionMismatch)
	}

	out := new(mat.VecDense)
	out.MulVec(l.a, x)

	bu := new(mat.VecDense)
	bu.MulVec(l.b, u)
	out.AddVec(out, bu)

	return out, nil
}

// Observe returns expected measurement of state x.
// It returns error if x has invalid dimension.
func (l *Linear) Observe(x mat.Vector) (mat.Vector, error) {
	n, _, _ := l.Dims()

	if x.Len() != n {
		return nil, fmt.Errorf("Invalid state vector length %d, expected %d: %w", x.Len(), n, filter.ErrDimensionMismatch)
	}

	out := new(mat.VecDense)
	out.MulVec(l.h, x)

	return out, nil
}

// A returns state propagation matrix
func (l *Linear) A() *mat.Dense {
	return mat.DenseCopyOf(l.a)
}

// B returns control matrix
func (l *Linear) B() *mat.Dense {
	return mat.DenseCopyOf(l.b)
}

// H returns observation matrix
func (l *Linear) H() *mat.Dense {
	return mat.DenseCopyOf(l.h)
}

// ProcessCov returns process noise covariance
func (l *Linear) ProcessCov() *mat.SymDense {
	return matutil.CloneSym(l.q)
}

// MeasCov returns measurement noise covariance
func (l *Linear) MeasCov() *mat.SymDense {
	return matutil.CloneSym(l.r)
}

// String implements fmt.Stringer
func (l *Linear) String() string {
	return fmt.Sprintf("Linear{\nA=%v\nB=%v\nH=%v\nProcessCov=%v\nMeasCov=%v\n}",
		matrix.Format(l.a), matrix.Format(l.b), matrix.Format(l.h), matrix.Format(l.q), matrix.Format(l.r))
}

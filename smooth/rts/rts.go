package rts

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/estimate"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/marco-hrlic/go-belief/model"
	"github.com/marco-hrlic/go-belief/smooth"
	"gonum.org/v1/gonum/mat"
)

var _ smooth.RTS = (*RTS)(nil)

// RTS is Rauch-Tung-Striebel smoother of a linear Kalman filter
type RTS struct {
	// a is state propagation matrix
	a *mat.Dense
}

// New creates new RTS smoother for linear model m and returns it.
func New(m *model.Linear) (*RTS, error) {
	if m == nil {
		return nil, fmt.Errorf("Missing model: %w", filter.ErrInvalidConfig)
	}

	return &RTS{
		a: m.A(),
	}, nil
}

// Smooth runs backward smoothing pass over filtered estimates and returns smoothed estimates.
// predicted[k] must be the prior of step k i.e. the belief predicted from filtered[k-1];
// predicted[0] is not used.
// It returns error if the slices are empty or have different lengths, if estimate dimensions
// do not match the model, or if any predicted covariance is singular.
func (s *RTS) Smooth(filtered, predicted []filter.Estimate) ([]filter.Estimate, error) {
	if len(filtered) == 0 || len(filtered) != len(predicted) {
		return nil, fmt.Errorf("Invalid number of estimates: %d filtered, %d predicted: %w",
			len(filtered), len(predicted), filter.ErrDimensionMismatch)
	}

	n, _ := s.a.Dims()
	for k := range filtered {
		if filtered[k].Val().Len() != n || predicted[k].Val().Len() != n {
			return nil, fmt.Errorf("Invalid estimate dimension at step %d: %w", k, filter.ErrDimensionMismatch)
		}
	}

	last := len(filtered) - 1
	out := make([]filter.Estimate, len(filtered))

	xs := matutil.CloneVec(filtered[last].Val())
	ps := matutil.CloneSym(filtered[last].Cov())

	est, err := estimate.NewBaseWithCov(xs, ps)
	if err != nil {
		return nil, err
	}
	out[last] = est

	for k := last - 1; k >= 0; k-- {
		x, p := filtered[k].Val(), filtered[k].Cov()
		xp, pp := predicted[k+1].Val(), predicted[k+1].Cov()

		var chol mat.Cholesky
		if ok := chol.Factorize(pp); !ok {
			return nil, fmt.Errorf("Predicted covariance at step %d: %w", k+1, filter.ErrSingularCovariance)
		}

		// smoother gain: C = P*Aᵀ*Pp⁻¹ = (Pp⁻¹*A*P)ᵀ
		ap := &mat.Dense{}
		ap.Mul(s.a, p)

		ct := &mat.Dense{}
		if err := chol.SolveTo(ct, ap); err != nil {
			return nil, fmt.Errorf("Smoother gain at step %d: %v: %w", k, err, filter.ErrSingularCovariance)
		}
		c := ct.T()

		// x + C*(xs - xp)
		dx := &mat.VecDense{}
		dx.SubVec(xs, xp)
		xNew := &mat.VecDense{}
		xNew.MulVec(c, dx)
		xNew.AddVec(xNew, x)

		// P + C*(Ps - Pp)*Cᵀ
		dp := &mat.Dense{}
		dp.Sub(ps, pp)
		cdp := &mat.Dense{}
		cdp.Mul(c, dp)
		pNew := &mat.Dense{}
		pNew.Mul(cdp, c.T())
		pNew.Add(pNew, p)

		xs = xNew
		ps = matutil.Symmetrize(pNew)

		est, err := estimate.NewBaseWithCov(xs, ps)
		if err != nil {
			return nil, err
		}
		out[k] = est
	}

	return out, nil
}

package kf

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/estimate"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/marco-hrlic/go-belief/kalman"
	"github.com/marco-hrlic/go-belief/model"
	"gonum.org/v1/gonum/mat"
)

// MaxCondition is the largest condition number of the innovation covariance
// the filter accepts before it reports it as singular.
const MaxCondition = 1e12

// Phase is the last operation performed on the filter belief
type Phase int

const (
	// Initialized means the belief is the initial condition
	Initialized Phase = iota
	// Predicted means the last operation was Predict
	Predicted
	// Updated means the last operation was Update
	Updated
)

// String implements fmt.Stringer
func (p Phase) String() string {
	switch p {
	case Initialized:
		return "Initialized"
	case Predicted:
		return "Predicted"
	case Updated:
		return "Updated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

var _ kalman.Kalman = (*KF)(nil)

// KF is Kalman Filter
type KF struct {
	// m is KF system model
	m *model.Linear
	// a is state propagation matrix
	a *mat.Dense
	// h is observation matrix
	h *mat.Dense
	// q is process noise covariance
	q *mat.SymDense
	// r is measurement noise covariance
	r *mat.SymDense
	// x is the current state mean
	x *mat.VecDense
	// p is the current state covariance
	p *mat.SymDense
	// xPred is the last predicted state mean
	xPred *mat.VecDense
	// pPred is the last predicted state covariance
	pPred *mat.SymDense
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
	// phase is the last performed operation
	phase Phase
}

// New creates new KF and returns it.
// It accepts the following parameters:
// - m:      linear system model
// - init:   initial condition of the filter
// It returns error if either of the following conditions is met:
// - initial state dimension does not match the model state dimension
// - initial covariance is not positive semi-definite
func New(m *model.Linear, init filter.InitCond) (*KF, error) {
	if m == nil || init == nil {
		return nil, fmt.Errorf("Model and initial condition must be supplied: %w", filter.ErrInvalidConfig)
	}

	n, _, k := m.Dims()

	if init.State().Len() != n {
		return nil, fmt.Errorf("Invalid initial state dimension: %d: %w", init.State().Len(), filter.ErrInvalidConfig)
	}

	if init.Cov().Symmetric() != n {
		return nil, fmt.Errorf("Invalid initial covariance dimension: %d: %w", init.Cov().Symmetric(), filter.ErrInvalidConfig)
	}

	if !matutil.IsFinite(init.State()) || !matutil.IsPSD(init.Cov(), matutil.PSDTol) {
		return nil, fmt.Errorf("Initial covariance is not positive semi-definite: %w", filter.ErrInvalidConfig)
	}

	x := matutil.CloneVec(init.State())
	p := matutil.CloneSym(init.Cov())

	return &KF{
		m:     m,
		a:     m.A(),
		h:     m.H(),
		q:     m.ProcessCov(),
		r:     m.MeasCov(),
		x:     x,
		p:     p,
		xPred: matutil.CloneVec(x),
		pPred: matutil.CloneSym(p),
		inn:   mat.NewVecDense(k, nil),
		k:     mat.NewDense(n, k, nil),
		phase: Initialized,
	}, nil
}

// Predict propagates the belief to the next step given control input u:
// x = A*x + B*u and P = A*P*Aᵀ + Q.
// It returns error if u has invalid dimension; the belief is left unmodified in that case.
func (k *KF) Predict(u mat.Vector) error {
	x, err := k.m.Propagate(k.x, u)
	if err != nil {
		return fmt.Errorf("System state propagation failed: %w", err)
	}

	ap := &mat.Dense{}
	ap.Mul(k.a, k.p)

	apa := &mat.Dense{}
	apa.Mul(ap, k.a.T())
	apa.Add(apa, k.q)

	k.x = matutil.CloneVec(x)
	k.p = matutil.Symmetrize(apa)
	k.xPred = matutil.CloneVec(k.x)
	k.pPred = matutil.CloneSym(k.p)
	k.phase = Predicted

	return nil
}

// Update corrects the belief using measurement z and returns the corrected estimate.
// It returns error if z has invalid dimension or if the innovation covariance
// is singular; the belief is left unmodified in both cases.
func (k *KF) Update(z mat.Vector) (filter.Estimate, error) {
	_, _, out := k.m.Dims()

	if z.Len() != out {
		return nil, fmt.Errorf("Invalid measurement length %d, expected %d: %w", z.Len(), out, filter.ErrDimensionMismatch)
	}

	// innovation: z - H*x
	y, err := k.m.Observe(k.x)
	if err != nil {
		return nil, fmt.Errorf("System observation failed: %w", err)
	}

	inn := &mat.VecDense{}
	inn.SubVec(z, y)

	// innovation covariance: H*P*Hᵀ + R
	hp := &mat.Dense{}
	hp.Mul(k.h, k.p)

	hph := &mat.Dense{}
	hph.Mul(hp, k.h.T())
	hph.Add(hph, k.r)
	s := matutil.Symmetrize(hph)

	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return nil, fmt.Errorf("Innovation covariance can not be factorized: %w", filter.ErrSingularCovariance)
	}

	if cond := chol.Cond(); cond > MaxCondition {
		return nil, fmt.Errorf("Innovation covariance condition number %e: %w", cond, filter.ErrSingularCovariance)
	}

	// Kalman gain: P*Hᵀ*S⁻¹ = (S⁻¹*H*P)ᵀ as both P and S are symmetric
	kt := &mat.Dense{}
	if err := chol.SolveTo(kt, hp); err != nil {
		return nil, fmt.Errorf("Failed to calculate Kalman gain: %v: %w", err, filter.ErrSingularCovariance)
	}

	gain := mat.DenseCopyOf(kt.T())

	// corrected state: x + K*inn
	x := &mat.VecDense{}
	x.MulVec(gain, inn)
	x.AddVec(x, k.x)

	// corrected covariance: P - K*H*P
	khp := &mat.Dense{}
	khp.Mul(gain, hp)

	p := &mat.Dense{}
	p.Sub(k.p, khp)

	if !matutil.IsFinite(x) || !matutil.IsFinite(p) {
		return nil, fmt.Errorf("Corrected belief is not finite: %w", filter.ErrSingularCovariance)
	}

	k.x = x
	k.p = matutil.Symmetrize(p)
	k.inn = inn
	k.k = gain
	k.phase = Updated

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Run runs one step of KF for given control input u and measurement z.
// It returns error if it either fails to propagate or correct the belief.
func (k *KF) Run(u, z mat.Vector) (filter.Estimate, error) {
	if err := k.Predict(u); err != nil {
		return nil, err
	}

	return k.Update(z)
}

// Estimate returns the current belief
func (k *KF) Estimate() filter.Estimate {
	est, _ := estimate.NewBaseWithCov(k.x, k.p)

	return est
}

// Predicted returns the belief produced by the last Predict call.
// Before the first Predict it returns the initial condition.
func (k *KF) Predicted() filter.Estimate {
	est, _ := estimate.NewBaseWithCov(k.xPred, k.pPred)

	return est
}

// Cov returns KF covariance
func (k *KF) Cov() mat.Symmetric {
	return matutil.CloneSym(k.p)
}

// Gain returns Kalman gain of the last update
func (k *KF) Gain() mat.Matrix {
	return mat.DenseCopyOf(k.k)
}

// Innovation returns innovation vector of the last update
func (k *KF) Innovation() mat.Vector {
	return matutil.CloneVec(k.inn)
}

// Phase returns the last operation performed on the belief
func (k *KF) Phase() Phase {
	return k.phase
}

// Model returns KF model
func (k *KF) Model() *model.Linear {
	return k.m
}

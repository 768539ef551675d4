package config

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/marco-hrlic/go-belief/kalman/kf"
	"github.com/marco-hrlic/go-belief/model"
	"github.com/marco-hrlic/go-belief/noise"
	"github.com/marco-hrlic/go-belief/particle/bf"
	"github.com/marco-hrlic/go-belief/particle/likelihood"
	"gonum.org/v1/gonum/mat"
)

// dense builds a matrix from its rows
func dense(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("Missing matrix %s: %w", name, filter.ErrInvalidConfig)
	}

	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("Row %d of matrix %s has %d columns, expected %d: %w", i, name, len(row), c, filter.ErrInvalidConfig)
		}
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), c, data), nil
}

// sym builds a symmetric matrix from its rows
func sym(name string, rows [][]float64) (*mat.SymDense, error) {
	d, err := dense(name, rows)
	if err != nil {
		return nil, err
	}

	if !matutil.IsSymmetric(d, 1e-12) {
		return nil, fmt.Errorf("Matrix %s is not symmetric: %w", name, filter.ErrInvalidConfig)
	}

	return matutil.Symmetrize(d), nil
}

// Model builds the linear system model
func (c *KalmanConfig) Model() (*model.Linear, error) {
	a, err := dense("a", c.A)
	if err != nil {
		return nil, err
	}

	b, err := dense("b", c.B)
	if err != nil {
		return nil, err
	}

	h, err := dense("h", c.H)
	if err != nil {
		return nil, err
	}

	q, err := sym("process_cov", c.ProcessCov)
	if err != nil {
		return nil, err
	}

	r, err := sym("meas_cov", c.MeasCov)
	if err != nil {
		return nil, err
	}

	return model.NewLinear(a, b, h, q, r)
}

// Build builds Kalman filter from configuration
func (c *KalmanConfig) Build() (*kf.KF, error) {
	m, err := c.Model()
	if err != nil {
		return nil, err
	}

	if len(c.InitMean) == 0 {
		return nil, fmt.Errorf("Missing initial mean: %w", filter.ErrInvalidConfig)
	}

	p, err := sym("init_cov", c.InitCov)
	if err != nil {
		return nil, err
	}

	if p.Symmetric() != len(c.InitMean) {
		return nil, fmt.Errorf("Initial covariance dimension %d does not match mean length %d: %w",
			p.Symmetric(), len(c.InitMean), filter.ErrInvalidConfig)
	}

	init := model.NewInitCond(mat.NewVecDense(len(c.InitMean), c.InitMean), p)

	return kf.New(m, init)
}

// Sampler builds distribution sampler
func (c *DistConfig) Sampler() (filter.Sampler, error) {
	switch c.Type {
	case Uniform:
		u, err := noise.NewUniform(c.Min, c.Max, c.Seed)
		if err != nil {
			return nil, err
		}
		return u, nil
	case Gaussian:
		cov, err := sym("cov", c.Cov)
		if err != nil {
			return nil, err
		}
		g, err := noise.NewGaussian(c.Mean, cov, c.Seed)
		if err != nil {
			return nil, err
		}
		return g, nil
	case None:
		n, err := noise.NewNone(c.Dim)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("Unsupported distribution type %q: %w", c.Type, filter.ErrInvalidConfig)
	}
}

// Build builds the likelihood of states with dimension stateDim and returns it
// with the measurement dimension it expects.
// Zero dimension means the measurement lives in the state space.
func (c *LikelihoodConfig) Build(stateDim int) (filter.Likelihood, int, error) {
	switch c.Type {
	case InverseDistance:
		return likelihood.InverseDistance{Floor: c.Floor}, 0, nil
	case GaussianDensity:
		cov, err := sym("cov", c.Cov)
		if err != nil {
			return nil, 0, err
		}

		var h mat.Matrix
		if len(c.H) > 0 {
			if h, err = dense("h", c.H); err != nil {
				return nil, 0, err
			}
		}

		g, err := likelihood.NewGaussian(h, cov)
		if err != nil {
			return nil, 0, err
		}
		k, n := g.Dims()
		if n != stateDim {
			return nil, 0, fmt.Errorf("Observation matrix has %d columns, expected %d: %w", n, stateDim, filter.ErrInvalidConfig)
		}

		return g, k, nil
	default:
		return nil, 0, fmt.Errorf("Unsupported likelihood type %q: %w", c.Type, filter.ErrInvalidConfig)
	}
}

// Build builds bootstrap particle filter from configuration
func (c *ParticleConfig) Build() (*bf.BF, error) {
	prior, err := c.Prior.Sampler()
	if err != nil {
		return nil, fmt.Errorf("Invalid prior: %w", err)
	}

	var motion filter.Sampler
	if c.MotionNoise != nil {
		if motion, err = c.MotionNoise.Sampler(); err != nil {
			return nil, fmt.Errorf("Invalid motion noise: %w", err)
		}
	}

	lik, measDim, err := c.Likelihood.Build(prior.Dim())
	if err != nil {
		return nil, fmt.Errorf("Invalid likelihood: %w", err)
	}

	return bf.New(&bf.Config{
		Particles:   c.Particles,
		Alpha:       c.Alpha,
		Prior:       prior,
		MotionNoise: motion,
		Likelihood:  lik,
		MeasDim:     measDim,
		Seed:        c.Seed,
		Workers:     c.Workers,
	})
}

package bf

import (
	"fmt"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/estimate"
	"github.com/marco-hrlic/go-belief/particle"
	"github.com/marco-hrlic/go-belief/particle/resample"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultAlpha is the default fraction of particles kept by resampling
const DefaultAlpha = 0.9

// Config stores Bootstrap Filter configuration
type Config struct {
	// Particles is the number of particles
	Particles int
	// Alpha is the fraction of particles resampling keeps from the weighted set,
	// the rest is drawn from Prior. It must be in [0,1] but is ignored by a custom Resampler
	Alpha float64
	// Prior samples initial and injected particles
	Prior filter.Sampler
	// MotionNoise is added to every particle on Predict; no noise if nil
	MotionNoise filter.Sampler
	// Likelihood weights particles given measurement
	Likelihood filter.Likelihood
	// MeasDim is measurement dimension. If zero it is taken from the Likelihood
	// Dims method when there is one, otherwise it is the state dimension
	MeasDim int
	// Seed seeds the filter source of randomness
	Seed uint64
	// Workers is the number of goroutines used for predicting and weighting particles
	Workers int
	// Resampler overrides the default resampler derived from Alpha and Prior
	Resampler particle.Resampler
}

// dimensioned is implemented by likelihoods with fixed measurement and state dimensions
type dimensioned interface {
	Dims() (meas, state int)
}

var _ particle.Filter = (*BF)(nil)

// BF is a Bootstrap Filter (BF) aka Particle Filter (PF)
// For more information about BF/PF see:
// https://en.wikipedia.org/wiki/Particle_filter
type BF struct {
	// set is the current particle generation
	set *particle.Set
	// kept is the number of particles at the front of set drawn from the weighted set
	kept int
	// prior samples initial particles
	prior filter.Sampler
	// motion is motion noise
	motion filter.Sampler
	// lik is particle likelihood
	lik filter.Likelihood
	// rs is particle resampler
	rs particle.Resampler
	// dim is state dimension
	dim int
	// measDim is measurement dimension
	measDim int
	// workers is the number of particle goroutines
	workers int
	// rnd is the filter source of randomness
	rnd *rand.Rand
}

// New creates new Bootstrap Filter and draws its initial particles from the prior.
// It returns error if either of the following conditions is met:
// - non-positive number of particles is requested
// - Alpha is outside [0,1], even if a custom Resampler ignores it
// - Prior or Likelihood is nil
// - MotionNoise dimension differs from Prior dimension
// - Likelihood reports dimensions that differ from Prior or MeasDim
func New(c *Config) (*BF, error) {
	if c == nil {
		return nil, fmt.Errorf("Missing configuration: %w", filter.ErrInvalidConfig)
	}

	if c.Particles <= 0 {
		return nil, fmt.Errorf("Invalid number of particles: %d: %w", c.Particles, filter.ErrInvalidConfig)
	}

	if c.Prior == nil || c.Prior.Dim() <= 0 {
		return nil, fmt.Errorf("Invalid prior: %w", filter.ErrInvalidConfig)
	}

	if c.Likelihood == nil {
		return nil, fmt.Errorf("Missing likelihood: %w", filter.ErrInvalidConfig)
	}

	dim := c.Prior.Dim()
	if c.MotionNoise != nil && c.MotionNoise.Dim() != dim {
		return nil, fmt.Errorf("Invalid motion noise dimension %d, expected %d: %w", c.MotionNoise.Dim(), dim, filter.ErrInvalidConfig)
	}

	if c.MeasDim < 0 {
		return nil, fmt.Errorf("Invalid measurement dimension: %d: %w", c.MeasDim, filter.ErrInvalidConfig)
	}

	if !(c.Alpha >= 0 && c.Alpha <= 1) {
		return nil, fmt.Errorf("Invalid alpha: %f: %w", c.Alpha, filter.ErrInvalidConfig)
	}

	measDim := c.MeasDim
	if l, ok := c.Likelihood.(dimensioned); ok {
		meas, state := l.Dims()
		if state != dim {
			return nil, fmt.Errorf("Likelihood state dimension %d does not match prior dimension %d: %w", state, dim, filter.ErrInvalidConfig)
		}
		if measDim != 0 && measDim != meas {
			return nil, fmt.Errorf("Likelihood measurement dimension %d does not match %d: %w", meas, measDim, filter.ErrInvalidConfig)
		}
		measDim = meas
	}
	if measDim == 0 {
		measDim = dim
	}

	rs := c.Resampler
	if rs == nil {
		d, err := resample.NewDiversity(c.Alpha, c.Prior)
		if err != nil {
			return nil, err
		}
		rs = d
	}

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}

	b := &BF{
		prior:   c.Prior,
		motion:  c.MotionNoise,
		lik:     c.Likelihood,
		rs:      rs,
		dim:     dim,
		measDim: measDim,
		workers: workers,
		rnd:     rand.New(rand.NewSource(c.Seed)),
	}

	if err := b.init(c.Particles); err != nil {
		return nil, err
	}

	return b, nil
}

// init draws m particles from the prior
func (b *BF) init(m int) error {
	set, err := particle.Sample(m, b.prior, b.rnd)
	if err != nil {
		return err
	}

	b.set = set
	b.kept = m

	return nil
}

// Init discards all particles and draws a new generation from the prior.
func (b *BF) Init() error {
	return b.init(b.set.Len())
}

// forEach splits particle indices into b.workers contiguous ranges and runs fn
// on each range in its own goroutine. Every range gets its own source of randomness
// seeded from the filter source, so results do not depend on goroutine scheduling.
func (b *BF) forEach(fn func(lo, hi int, src rand.Source) error) error {
	m := b.set.Len()

	workers := b.workers
	if workers > m {
		workers = m
	}
	chunk := (m + workers - 1) / workers

	seeds := make([]uint64, workers)
	for i := range seeds {
		seeds[i] = b.rnd.Uint64()
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > m {
			hi = m
		}
		if lo >= hi {
			break
		}
		src := rand.NewSource(seeds[w])

		g.Go(func() error {
			return fn(lo, hi, src)
		})
	}

	return g.Wait()
}

// Predict moves every particle by control input u and independently drawn motion noise.
// It returns error if u has invalid dimension; particles are left unmodified in that case.
func (b *BF) Predict(u mat.Vector) error {
	if u.Len() != b.dim {
		return fmt.Errorf("Invalid control vector length %d, expected %d: %w", u.Len(), b.dim, filter.ErrDimensionMismatch)
	}

	old := b.set.States()
	states := mat.NewDense(b.dim, b.set.Len(), nil)

	err := b.forEach(func(lo, hi int, src rand.Source) error {
		x := mat.NewVecDense(b.dim, nil)
		for i := lo; i < hi; i++ {
			x.AddVec(old.ColView(i), u)
			if b.motion != nil {
				x.AddVec(x, b.motion.SampleWith(src))
			}
			states.SetCol(i, x.RawVector().Data)
		}

		return nil
	})
	if err != nil {
		return err
	}

	set, err := particle.NewSet(states, b.set.Weights())
	if err != nil {
		return err
	}

	b.set = set

	return nil
}

// weigh returns the current particles weighted by the likelihood of measurement z
func (b *BF) weigh(z mat.Vector) (*particle.Set, error) {
	if z.Len() != b.measDim {
		return nil, fmt.Errorf("Invalid measurement length %d, expected %d: %w", z.Len(), b.measDim, filter.ErrDimensionMismatch)
	}

	states := b.set.States()
	weights := make([]float64, b.set.Len())

	err := b.forEach(func(lo, hi int, _ rand.Source) error {
		for i := lo; i < hi; i++ {
			weights[i] = b.lik.Likelihood(states.ColView(i), z)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	w, err := particle.Normalize(weights)
	if err != nil {
		return nil, err
	}

	return particle.NewSet(states, w)
}

// Weigh sets particle weights to the normalized likelihood of measurement z without resampling.
// It returns error if z has invalid dimension or if the weights are degenerate;
// particles are left unmodified in that case.
func (b *BF) Weigh(z mat.Vector) error {
	set, err := b.weigh(z)
	if err != nil {
		return err
	}

	b.set = set

	return nil
}

// Resample replaces the current particles with a new generation drawn from them.
// It returns error if the current weights are degenerate.
func (b *BF) Resample() error {
	set, kept, err := b.rs.Resample(b.set, b.rnd)
	if err != nil {
		return fmt.Errorf("Failed to resample particles: %w", err)
	}

	if set.Len() != b.set.Len() {
		return fmt.Errorf("Resampler returned %d particles, expected %d: %w", set.Len(), b.set.Len(), filter.ErrDimensionMismatch)
	}

	b.set = set
	b.kept = kept

	return nil
}

// Update weighs particles by measurement z, resamples them and returns the new estimate.
// It returns error if z has invalid dimension or if the weights are degenerate;
// particles are left unmodified in that case.
func (b *BF) Update(z mat.Vector) (filter.Estimate, error) {
	set, err := b.weigh(z)
	if err != nil {
		return nil, err
	}

	next, kept, err := b.rs.Resample(set, b.rnd)
	if err != nil {
		return nil, fmt.Errorf("Failed to resample particles: %w", err)
	}

	b.set = next
	b.kept = kept

	return b.estimate()
}

// Run runs one step of BF for given control input u and measurement z.
// It returns error if it either fails to predict or update particles.
func (b *BF) Run(u, z mat.Vector) (filter.Estimate, error) {
	if err := b.Predict(u); err != nil {
		return nil, err
	}

	return b.Update(z)
}

// estimate returns unweighted mean and covariance of kept particles
func (b *BF) estimate() (*estimate.Particle, error) {
	k := b.kept
	if k == 0 {
		k = b.set.Len()
	}

	return estimate.NewParticle(b.set.Mean(k), b.set.Cov(k), b.set.States(), b.set.Weights(), b.kept)
}

// Estimate returns unweighted mean and covariance of the particles kept by the last resampling,
// or of all particles if none were kept or no resampling happened yet.
func (b *BF) Estimate() filter.Estimate {
	est, _ := b.estimate()

	return est
}

// WeightedEstimate returns weighted mean and covariance of all particles.
// It returns error if the current weights are degenerate.
func (b *BF) WeightedEstimate() (filter.Estimate, error) {
	mean, err := b.set.WeightedMean()
	if err != nil {
		return nil, err
	}

	w, err := particle.Normalize(b.set.Weights())
	if err != nil {
		return nil, err
	}

	// stat treats weights as frequencies: they must sum to the number of particles
	floats.Scale(float64(len(w)), w)

	cov := mat.NewSymDense(b.dim, nil)
	if b.set.Len() > 1 {
		stat.CovarianceMatrix(cov, b.set.States().T(), w)
	}

	return estimate.NewBaseWithCov(mean, cov)
}

// Particles returns BF particle states stored in matrix columns
func (b *BF) Particles() *mat.Dense {
	return b.set.States()
}

// Weights returns a copy of particle weights
func (b *BF) Weights() mat.Vector {
	return mat.NewVecDense(b.set.Len(), b.set.Weights())
}

// Set returns a copy of the current particle set
func (b *BF) Set() *particle.Set {
	return b.set.Clone()
}

// Kept returns the number of particles kept from the weighted set by the last resampling
func (b *BF) Kept() int {
	return b.kept
}

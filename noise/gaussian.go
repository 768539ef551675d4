package noise

import (
	"fmt"
	"math"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"github.com/milosgajdos83/matrix"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian is multivariate Gaussian noise
type Gaussian struct {
	// mean is noise mean
	mean []float64
	// cov is noise covariance
	cov *mat.SymDense
	// factor satisfies factor*factorᵀ = cov
	factor *mat.Dense
	// dist is set if cov is positive definite
	dist *distmv.Normal
	// seed is the seed of src
	seed uint64
	// src is the noise own source of randomness
	src rand.Source
}

var _ filter.Noise = (*Gaussian)(nil)
var _ filter.Sampler = (*Gaussian)(nil)

// NewGaussian creates new Gaussian noise with given mean and covariance and returns it.
// Covariance must be positive semi-definite; singular covariances are allowed.
// Samples returned by Sample are drawn from a source seeded with seed.
// It returns error if the dimensions of mean and cov differ or if cov is not PSD.
func NewGaussian(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if len(mean) == 0 || cov == nil {
		return nil, fmt.Errorf("Invalid gaussian noise parameters: %w", filter.ErrInvalidConfig)
	}

	if cov.Symmetric() != len(mean) {
		return nil, fmt.Errorf("Invalid covariance dimension %d for mean of length %d: %w",
			cov.Symmetric(), len(mean), filter.ErrDimensionMismatch)
	}

	factor, err := psdFactor(cov)
	if err != nil {
		return nil, err
	}

	g := &Gaussian{
		mean:   append([]float64(nil), mean...),
		cov:    matutil.CloneSym(cov),
		factor: factor,
		seed:   seed,
	}

	if err := g.Reset(); err != nil {
		return nil, err
	}

	return g, nil
}

// psdFactor returns a matrix L such that L*Lᵀ = cov using eigen decomposition of cov
func psdFactor(cov mat.Symmetric) (*mat.Dense, error) {
	if !matutil.IsFinite(cov) || !matutil.IsPSD(cov, matutil.PSDTol) {
		return nil, fmt.Errorf("Noise covariance is not positive semi-definite: %w", filter.ErrInvalidConfig)
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return nil, fmt.Errorf("Failed to factorize noise covariance: %w", filter.ErrInvalidConfig)
	}

	vals := es.Values(nil)
	vecs := &mat.Dense{}
	es.VectorsTo(vecs)

	for i, v := range vals {
		vals[i] = math.Sqrt(math.Max(v, 0))
	}

	factor := &mat.Dense{}
	factor.Mul(vecs, mat.NewDiagDense(len(vals), vals))

	return factor, nil
}

// Dim returns noise dimension
func (g *Gaussian) Dim() int {
	return len(g.mean)
}

// Sample generates a sample from Gaussian noise using its own source and returns it.
// Sample is not safe for concurrent use; use SampleWith with distinct sources instead.
func (g *Gaussian) Sample() mat.Vector {
	if g.dist != nil {
		return mat.NewVecDense(len(g.mean), g.dist.Rand(nil))
	}

	return g.SampleWith(g.src)
}

// SampleWith generates a sample from Gaussian noise using src and returns it.
func (g *Gaussian) SampleWith(src rand.Source) mat.Vector {
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	z := mat.NewVecDense(len(g.mean), nil)
	for i := 0; i < z.Len(); i++ {
		z.SetVec(i, unit.Rand())
	}

	sample := mat.NewVecDense(len(g.mean), nil)
	sample.MulVec(g.factor, z)
	sample.AddVec(sample, mat.NewVecDense(len(g.mean), g.mean))

	return sample
}

// Cov returns covariance matrix of Gaussian noise
func (g *Gaussian) Cov() mat.Symmetric {
	return matutil.CloneSym(g.cov)
}

// Mean returns Gaussian mean
func (g *Gaussian) Mean() []float64 {
	return append([]float64(nil), g.mean...)
}

// Reset reseeds the noise source so Sample replays the same sequence.
func (g *Gaussian) Reset() error {
	g.src = rand.NewSource(g.seed)

	g.dist = nil
	if dist, ok := distmv.NewNormal(g.mean, g.cov, g.src); ok {
		g.dist = dist
	}

	return nil
}

// String implements fmt.Stringer
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, matrix.Format(g.cov))
}

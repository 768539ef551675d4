package config

import (
	"path/filepath"
	"testing"

	filter "github.com/marco-hrlic/go-belief"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg.Kalman)
	require.NotNil(t, cfg.Particle)

	assert.Equal(t, DefaultParticles, cfg.Particle.Particles)
	assert.Equal(t, DefaultAlpha, cfg.Particle.Alpha)
	assert.Equal(t, Uniform, cfg.Particle.Prior.Type)
}

func TestBuildKalman(t *testing.T) {
	f, err := DefaultKalman().Build()
	require.NoError(t, err)

	est, err := f.Run(mat.NewVecDense(2, []float64{1, 1}), mat.NewVecDense(2, []float64{1.2, 0.9}))
	require.NoError(t, err)
	assert.Less(t, mat.Trace(est.Cov()), 0.8)
}

func TestBuildKalmanInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *KalmanConfig)
	}{
		{"missing a", func(c *KalmanConfig) { c.A = nil }},
		{"ragged b", func(c *KalmanConfig) { c.B = [][]float64{{1, 0}, {0}} }},
		{"asymmetric process", func(c *KalmanConfig) { c.ProcessCov = [][]float64{{1, 0.5}, {0, 1}} }},
		{"indefinite meas", func(c *KalmanConfig) { c.MeasCov = [][]float64{{1, 2}, {2, 1}} }},
		{"missing mean", func(c *KalmanConfig) { c.InitMean = nil }},
		{"init cov dim", func(c *KalmanConfig) { c.InitCov = [][]float64{{1}} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultKalman()
			tc.modify(c)
			_, err := c.Build()
			assert.ErrorIs(t, err, filter.ErrInvalidConfig)
		})
	}
}

func TestBuildParticle(t *testing.T) {
	c := DefaultParticle()
	c.Particles = 200
	c.Seed = 3

	f, err := c.Build()
	require.NoError(t, err)

	_, err = f.Run(mat.NewVecDense(2, []float64{0.1, 0.1}), mat.NewVecDense(2, []float64{0.1, 0.1}))
	require.NoError(t, err)
	assert.Equal(t, 180, f.Kept())
}

func TestBuildParticleGaussian(t *testing.T) {
	c := DefaultParticle()
	c.Particles = 100
	c.Likelihood = LikelihoodConfig{
		Type: GaussianDensity,
		H:    [][]float64{{1, 0}},
		Cov:  [][]float64{{0.5}},
	}
	c.MotionNoise = &DistConfig{Type: None, Dim: 2}

	f, err := c.Build()
	require.NoError(t, err)

	_, err = f.Update(mat.NewVecDense(1, []float64{3}))
	require.NoError(t, err)

	_, err = f.Update(mat.NewVecDense(2, []float64{3, 3}))
	assert.ErrorIs(t, err, filter.ErrDimensionMismatch)
}

func TestBuildParticleInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *ParticleConfig)
	}{
		{"no particles", func(c *ParticleConfig) { c.Particles = 0 }},
		{"alpha", func(c *ParticleConfig) { c.Alpha = 2 }},
		{"prior type", func(c *ParticleConfig) { c.Prior.Type = "beta" }},
		{"prior bounds", func(c *ParticleConfig) { c.Prior.Max = []float64{-1, -1} }},
		{"motion cov", func(c *ParticleConfig) { c.MotionNoise.Cov = [][]float64{{1, 2}, {2, 1}} }},
		{"likelihood type", func(c *ParticleConfig) { c.Likelihood.Type = "cauchy" }},
		{"likelihood cov", func(c *ParticleConfig) { c.Likelihood = LikelihoodConfig{Type: GaussianDensity} }},
		{"likelihood columns", func(c *ParticleConfig) {
			c.Likelihood = LikelihoodConfig{Type: GaussianDensity, H: [][]float64{{1, 0, 0}}, Cov: [][]float64{{1}}}
		}},
		{"likelihood identity", func(c *ParticleConfig) {
			c.Likelihood = LikelihoodConfig{Type: GaussianDensity, Cov: [][]float64{{1}}}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultParticle()
			tc.modify(c)
			_, err := c.Build()
			assert.ErrorIs(t, err, filter.ErrInvalidConfig)
		})
	}
}

func TestBuildParticleSeed(t *testing.T) {
	build := func(priorSeed uint64) *mat.Dense {
		c := DefaultParticle()
		c.Particles = 50
		c.Seed = 11
		c.Prior.Seed = priorSeed

		f, err := c.Build()
		require.NoError(t, err)

		return f.Particles()
	}

	// particles are drawn from the filter source
	assert.True(t, mat.Equal(build(1), build(2)))
}

func TestParse(t *testing.T) {
	data := []byte(`
kalman:
  a: [[1, 1], [0, 1]]
  b: [[0.5], [1]]
  h: [[1, 0]]
  process_cov: [[0.01, 0], [0, 0.01]]
  meas_cov: [[0.25]]
  init_mean: [100, 0]
  init_cov: [[1, 0], [0, 1]]
particle:
  particles: 50
  alpha: 0.8
  seed: 9
  workers: 2
  prior:
    type: gaussian
    mean: [5, 5]
    cov: [[1, 0], [0, 1]]
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0.5}, {1}}, cfg.Kalman.B)
	assert.Equal(t, 50, cfg.Particle.Particles)
	assert.Equal(t, 0.8, cfg.Particle.Alpha)
	assert.Equal(t, 2, cfg.Particle.Workers)
	assert.Equal(t, Gaussian, cfg.Particle.Prior.Type)
	// unset fields keep their defaults
	assert.Equal(t, InverseDistance, cfg.Particle.Likelihood.Type)

	k, err := cfg.Kalman.Build()
	require.NoError(t, err)
	n, m, meas := k.Model().Dims()
	assert.Equal(t, []int{2, 1, 1}, []int{n, m, meas})

	p, err := cfg.Particle.Build()
	require.NoError(t, err)
	assert.Equal(t, 50, p.Kept())

	_, err = Parse([]byte("kalman: [1, 2"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yaml")

	cfg := DefaultConfig()
	cfg.Particle.Seed = 77
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

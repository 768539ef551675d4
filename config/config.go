package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultParticles is the default number of particles
	DefaultParticles = 1000
	// DefaultAlpha is the default fraction of particles kept by resampling
	DefaultAlpha = 0.9
	// DefaultWorkers is the default number of particle goroutines
	DefaultWorkers = 1
)

// Distribution types
const (
	Uniform  = "uniform"
	Gaussian = "gaussian"
	None     = "none"
)

// Likelihood types
const (
	InverseDistance = "inverse_distance"
	GaussianDensity = "gaussian"
)

// Config configures the filters
type Config struct {
	Kalman   *KalmanConfig   `yaml:"kalman,omitempty"`
	Particle *ParticleConfig `yaml:"particle,omitempty"`
}

// KalmanConfig configures a linear Kalman filter.
// Matrices are given as lists of rows.
type KalmanConfig struct {
	A          [][]float64 `yaml:"a"`
	B          [][]float64 `yaml:"b"`
	H          [][]float64 `yaml:"h"`
	ProcessCov [][]float64 `yaml:"process_cov"`
	MeasCov    [][]float64 `yaml:"meas_cov"`
	InitMean   []float64   `yaml:"init_mean"`
	InitCov    [][]float64 `yaml:"init_cov"`
}

// ParticleConfig configures a bootstrap particle filter
type ParticleConfig struct {
	Particles   int              `yaml:"particles"`
	Alpha       float64          `yaml:"alpha"`
	Seed        uint64           `yaml:"seed"`
	Workers     int              `yaml:"workers"`
	Prior       DistConfig       `yaml:"prior"`
	MotionNoise *DistConfig      `yaml:"motion_noise,omitempty"`
	Likelihood  LikelihoodConfig `yaml:"likelihood"`
}

// DistConfig configures a distribution used for sampling.
// Seed seeds the distribution's own source used by Sample. Particle filters draw
// prior and motion noise samples from the source seeded by ParticleConfig.Seed,
// so Seed has no effect on them.
type DistConfig struct {
	Type string      `yaml:"type"`
	Min  []float64   `yaml:"min,omitempty"`
	Max  []float64   `yaml:"max,omitempty"`
	Mean []float64   `yaml:"mean,omitempty"`
	Cov  [][]float64 `yaml:"cov,omitempty"`
	Dim  int         `yaml:"dim,omitempty"`
	Seed uint64      `yaml:"seed,omitempty"`
}

// LikelihoodConfig configures particle likelihood
type LikelihoodConfig struct {
	Type  string      `yaml:"type"`
	Floor float64     `yaml:"floor,omitempty"`
	H     [][]float64 `yaml:"h,omitempty"`
	Cov   [][]float64 `yaml:"cov,omitempty"`
}

// DefaultKalman returns planar position filter configuration driven by velocity commands
func DefaultKalman() *KalmanConfig {
	return &KalmanConfig{
		A:          [][]float64{{1, 0}, {0, 1}},
		B:          [][]float64{{1, 0}, {0, 1}},
		H:          [][]float64{{1, 0}, {0, 1}},
		ProcessCov: [][]float64{{0.3, 0}, {0, 0.3}},
		MeasCov:    [][]float64{{0.75, 0}, {0, 0.6}},
		InitMean:   []float64{0, 0},
		InitCov:    [][]float64{{0.1, 0}, {0, 0.1}},
	}
}

// DefaultParticle returns planar particle filter configuration with particles spread over [0,10]²
func DefaultParticle() *ParticleConfig {
	return &ParticleConfig{
		Particles: DefaultParticles,
		Alpha:     DefaultAlpha,
		Workers:   DefaultWorkers,
		Prior: DistConfig{
			Type: Uniform,
			Min:  []float64{0, 0},
			Max:  []float64{10, 10},
		},
		MotionNoise: &DistConfig{
			Type: Gaussian,
			Mean: []float64{0, 0},
			Cov:  [][]float64{{0.01, 0}, {0, 0.01}},
		},
		Likelihood: LikelihoodConfig{
			Type: InverseDistance,
		},
	}
}

// DefaultConfig returns default configuration of both filters
func DefaultConfig() *Config {
	return &Config{
		Kalman:   DefaultKalman(),
		Particle: DefaultParticle(),
	}
}

// Parse parses YAML encoded configuration on top of DefaultConfig.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Failed to parse config: %w", err)
	}

	return cfg, nil
}

// Load reads configuration from YAML file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Save writes configuration to YAML file at path
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

package filter

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector or matrix shape disagrees with model dimensions.
	ErrDimensionMismatch = errors.New("filter: dimension mismatch")

	// ErrSingularCovariance is returned when a covariance that must be inverted is singular or ill-conditioned.
	ErrSingularCovariance = errors.New("filter: singular covariance")

	// ErrDegenerateWeights is returned when particle weights can not be normalized.
	ErrDegenerateWeights = errors.New("filter: degenerate particle weights")

	// ErrInvalidConfig is returned when a filter is constructed with invalid parameters.
	ErrInvalidConfig = errors.New("filter: invalid configuration")
)

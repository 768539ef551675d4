package model

import (
	"github.com/marco-hrlic/go-belief/internal/matutil"
	"gonum.org/v1/gonum/mat"
)

// InitCond implements filter.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it
func NewInitCond(state mat.Vector, cov mat.Symmetric) *InitCond {
	return &InitCond{
		state: matutil.CloneVec(state),
		cov:   matutil.CloneSym(cov),
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	return matutil.CloneVec(c.state)
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	return matutil.CloneSym(c.cov)
}

package network

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dropout zeroes a fraction of activations while training and scales the
// rest so the expected value is unchanged. Inference is the identity.
type Dropout struct {
	name  string
	rate  float64
	rng   *rand.Rand
	masks []*mat.Dense
}

func NewDropout(name string, rate float64) *Dropout {
	return &Dropout{name: name, rate: rate}
}

func (d *Dropout) Name() string { return d.name }

func (d *Dropout) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if d.rate < 0 || d.rate >= 1 {
		return Shape{}, errors.Errorf("%s: dropout rate must be in [0, 1), got %v", d.name, d.rate)
	}
	d.rng = rng
	return in, nil
}

func (d *Dropout) Forward(x []*mat.Dense, training bool) []*mat.Dense {
	d.masks = nil
	if !training || d.rate == 0 {
		return x
	}
	d.masks = make([]*mat.Dense, len(x))
	y := make([]*mat.Dense, len(x))
	for t, step := range x {
		rows, cols := step.Dims()
		d.masks[t] = dropoutMask(rows, cols, d.rate, d.rng)
		var out mat.Dense
		out.MulElem(step, d.masks[t])
		y[t] = &out
	}
	return y
}

func (d *Dropout) Backward(dy []*mat.Dense) []*mat.Dense {
	if d.masks == nil {
		return dy
	}
	dx := make([]*mat.Dense, len(dy))
	for t, grad := range dy {
		var out mat.Dense
		out.MulElem(grad, d.masks[t])
		dx[t] = &out
	}
	return dx
}

func (d *Dropout) Params() []*Param { return nil }

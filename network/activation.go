package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type ActivationKind int

const (
	ReLU ActivationKind = iota
	Softmax
)

func (k ActivationKind) String() string {
	switch k {
	case ReLU:
		return "relu"
	case Softmax:
		return "softmax"
	}
	return "unknown"
}

// Activation applies an elementwise ReLU or a row-wise softmax to every step.
type Activation struct {
	name string
	kind ActivationKind
	y    []*mat.Dense
}

func NewActivation(name string, kind ActivationKind) *Activation {
	return &Activation{name: name, kind: kind}
}

func (a *Activation) Name() string { return a.name }

func (a *Activation) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if a.kind != ReLU && a.kind != Softmax {
		return Shape{}, errors.Errorf("%s: unknown activation %d", a.name, a.kind)
	}
	return in, nil
}

func (a *Activation) Forward(x []*mat.Dense, training bool) []*mat.Dense {
	a.y = make([]*mat.Dense, len(x))
	for t, step := range x {
		y := mat.DenseCopyOf(step)
		switch a.kind {
		case ReLU:
			y.Apply(func(_, _ int, v float64) float64 {
				return math.Max(0, v)
			}, y)
		case Softmax:
			rows, _ := y.Dims()
			for i := 0; i < rows; i++ {
				softmaxInPlace(y.RawRowView(i))
			}
		}
		a.y[t] = y
	}
	return a.y
}

func softmaxInPlace(row []float64) {
	top := floats.Max(row)
	var sum float64
	for j, v := range row {
		e := math.Exp(v - top)
		row[j] = e
		sum += e
	}
	floats.Scale(1/sum, row)
}

func (a *Activation) Backward(dy []*mat.Dense) []*mat.Dense {
	dx := make([]*mat.Dense, len(dy))
	for t, grad := range dy {
		y := a.y[t]
		d := mat.DenseCopyOf(grad)
		switch a.kind {
		case ReLU:
			d.Apply(func(i, j int, v float64) float64 {
				if y.At(i, j) > 0 {
					return v
				}
				return 0
			}, d)
		case Softmax:
			rows, _ := d.Dims()
			for i := 0; i < rows; i++ {
				yr := y.RawRowView(i)
				dr := d.RawRowView(i)
				dot := floats.Dot(dr, yr)
				for j := range dr {
					dr[j] = yr[j] * (dr[j] - dot)
				}
			}
		}
		dx[t] = d
	}
	return dx
}

func (a *Activation) Params() []*Param { return nil }

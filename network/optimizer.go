package network

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Optimizer interface {
	Name() string
	// Step applies the current gradients of the trainable params.
	Step(params []*Param)
}

// RMSprop keeps a moving average of squared gradients per weight and
// divides each step by its root. The learning rate is constant.
type RMSprop struct {
	LearningRate float64
	Rho          float64
	Epsilon      float64

	velocity map[*Param]*mat.Dense
}

func NewRMSprop() *RMSprop {
	return &RMSprop{
		LearningRate: 0.001,
		Rho:          0.9,
		Epsilon:      1e-7,
		velocity:     make(map[*Param]*mat.Dense),
	}
}

func (o *RMSprop) Name() string { return "rmsprop" }

func (o *RMSprop) Step(params []*Param) {
	if o.velocity == nil {
		o.velocity = make(map[*Param]*mat.Dense)
	}
	for _, p := range params {
		if !p.Trainable {
			continue
		}
		v, ok := o.velocity[p]
		if !ok {
			r, c := p.Value.Dims()
			v = mat.NewDense(r, c, nil)
			o.velocity[p] = v
		}
		w := p.Value.RawMatrix().Data
		g := p.Grad.RawMatrix().Data
		acc := v.RawMatrix().Data
		for i := range w {
			acc[i] = o.Rho*acc[i] + (1-o.Rho)*g[i]*g[i]
			w[i] -= o.LearningRate * g[i] / (math.Sqrt(acc[i]) + o.Epsilon)
		}
	}
}

package network

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer: y = x W + b.
type Dense struct {
	name   string
	units  int
	kernel *Param
	bias   *Param
	x      *mat.Dense
}

func NewDense(name string, units int) *Dense {
	return &Dense{name: name, units: units}
}

func (d *Dense) Name() string { return d.name }

func (d *Dense) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if err := requireSingleStep(d.name, in); err != nil {
		return Shape{}, err
	}
	d.kernel = newParam(d.name+"/kernel", in.Features, d.units)
	d.bias = newParam(d.name+"/bias", 1, d.units)
	glorotUniform(d.kernel.Value, in.Features, d.units, rng)
	return Shape{Steps: 1, Features: d.units}, nil
}

func (d *Dense) Forward(x []*mat.Dense, training bool) []*mat.Dense {
	d.x = x[0]
	var y mat.Dense
	y.Mul(d.x, d.kernel.Value)
	addRowVector(&y, d.bias.Value)
	return []*mat.Dense{&y}
}

func (d *Dense) Backward(dy []*mat.Dense) []*mat.Dense {
	grad := dy[0]
	d.kernel.Grad.Mul(d.x.T(), grad)
	d.bias.Grad.Zero()
	sumRowsInto(d.bias.Grad, grad)

	var dx mat.Dense
	dx.Mul(grad, d.kernel.Value.T())
	return []*mat.Dense{&dx}
}

func (d *Dense) Params() []*Param {
	return []*Param{d.kernel, d.bias}
}

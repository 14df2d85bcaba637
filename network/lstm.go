package network

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// gate blocks in the kernels, in this order
const (
	gateInput = iota
	gateForget
	gateCell
	gateOutput
	numGates
)

type lstmStep struct {
	x     *mat.Dense // B x D
	hPrev *mat.Dense // B x H, recurrent dropout already applied
	gates *mat.Dense // B x 4H, activated i f g o
	cPrev *mat.Dense
	tanhC *mat.Dense
}

// LSTM is a long short-term memory layer. With returnSequences it emits
// the hidden state of every step, otherwise only the last one.
// Recurrent dropout drops the same hidden units at every step of a
// sequence.
type LSTM struct {
	name             string
	units            int
	returnSequences  bool
	recurrentDropout float64

	kernel    *Param // D x 4H
	recurrent *Param // H x 4H
	bias      *Param // 1 x 4H

	rng   *rand.Rand
	mask  *mat.Dense
	steps []lstmStep
}

func NewLSTM(name string, units int, returnSequences bool, recurrentDropout float64) *LSTM {
	return &LSTM{
		name:             name,
		units:            units,
		returnSequences:  returnSequences,
		recurrentDropout: recurrentDropout,
	}
}

func (l *LSTM) Name() string { return l.name }

func (l *LSTM) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if in.Steps < 1 || in.Features < 1 {
		return Shape{}, errors.Wrapf(ErrShapeMismatch, "%s: invalid input %v", l.name, in)
	}
	if l.recurrentDropout < 0 || l.recurrentDropout >= 1 {
		return Shape{}, errors.Errorf("%s: recurrent dropout must be in [0, 1), got %v", l.name, l.recurrentDropout)
	}
	h := l.units
	l.rng = rng
	l.kernel = newParam(l.name+"/kernel", in.Features, numGates*h)
	l.recurrent = newParam(l.name+"/recurrent_kernel", h, numGates*h)
	l.bias = newParam(l.name+"/bias", 1, numGates*h)

	glorotUniform(l.kernel.Value, in.Features, numGates*h, rng)
	for g := 0; g < numGates; g++ {
		block := l.recurrent.Value.Slice(0, h, g*h, (g+1)*h).(*mat.Dense)
		block.Copy(orthogonal(h, rng))
	}
	for j := gateForget * h; j < (gateForget+1)*h; j++ {
		l.bias.Value.Set(0, j, 1)
	}

	if l.returnSequences {
		return Shape{Steps: in.Steps, Features: h}, nil
	}
	return Shape{Steps: 1, Features: h}, nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func (l *LSTM) Forward(x []*mat.Dense, training bool) []*mat.Dense {
	batch, _ := x[0].Dims()
	h := l.units

	l.mask = nil
	if training && l.recurrentDropout > 0 {
		l.mask = dropoutMask(batch, h, l.recurrentDropout, l.rng)
	}

	hState := mat.NewDense(batch, h, nil)
	cState := mat.NewDense(batch, h, nil)
	l.steps = make([]lstmStep, len(x))
	outputs := make([]*mat.Dense, 0, len(x))

	for t, xt := range x {
		hPrev := hState
		if l.mask != nil {
			hPrev = mat.NewDense(batch, h, nil)
			hPrev.MulElem(hState, l.mask)
		}

		gates := mat.NewDense(batch, numGates*h, nil)
		gates.Mul(xt, l.kernel.Value)
		var rec mat.Dense
		rec.Mul(hPrev, l.recurrent.Value)
		gates.Add(gates, &rec)
		addRowVector(gates, l.bias.Value)

		c := mat.NewDense(batch, h, nil)
		tanhC := mat.NewDense(batch, h, nil)
		hNext := mat.NewDense(batch, h, nil)
		for r := 0; r < batch; r++ {
			gr := gates.RawRowView(r)
			cp := cState.RawRowView(r)
			cr := c.RawRowView(r)
			tr := tanhC.RawRowView(r)
			hr := hNext.RawRowView(r)
			for j := 0; j < h; j++ {
				i := sigmoid(gr[gateInput*h+j])
				f := sigmoid(gr[gateForget*h+j])
				g := math.Tanh(gr[gateCell*h+j])
				o := sigmoid(gr[gateOutput*h+j])
				gr[gateInput*h+j] = i
				gr[gateForget*h+j] = f
				gr[gateCell*h+j] = g
				gr[gateOutput*h+j] = o

				cr[j] = f*cp[j] + i*g
				tr[j] = math.Tanh(cr[j])
				hr[j] = o * tr[j]
			}
		}

		l.steps[t] = lstmStep{x: xt, hPrev: hPrev, gates: gates, cPrev: cState, tanhC: tanhC}
		hState, cState = hNext, c
		if l.returnSequences {
			outputs = append(outputs, hNext)
		}
	}

	if !l.returnSequences {
		outputs = append(outputs, hState)
	}
	return outputs
}

// Backward runs backpropagation through time over the cached steps.
func (l *LSTM) Backward(dy []*mat.Dense) []*mat.Dense {
	zeroGrads(l.kernel, l.recurrent, l.bias)
	batch, _ := l.steps[0].x.Dims()
	h := l.units
	last := len(l.steps) - 1

	dhNext := mat.NewDense(batch, h, nil)
	dcNext := mat.NewDense(batch, h, nil)
	dx := make([]*mat.Dense, len(l.steps))

	for t := last; t >= 0; t-- {
		s := l.steps[t]
		dh := mat.DenseCopyOf(dhNext)
		if l.returnSequences {
			dh.Add(dh, dy[t])
		} else if t == last {
			dh.Add(dh, dy[0])
		}

		dz := mat.NewDense(batch, numGates*h, nil)
		dc := mat.NewDense(batch, h, nil)
		for r := 0; r < batch; r++ {
			gr := s.gates.RawRowView(r)
			dzr := dz.RawRowView(r)
			dhr := dh.RawRowView(r)
			tr := s.tanhC.RawRowView(r)
			cp := s.cPrev.RawRowView(r)
			dcn := dcNext.RawRowView(r)
			dcr := dc.RawRowView(r)
			for j := 0; j < h; j++ {
				i := gr[gateInput*h+j]
				f := gr[gateForget*h+j]
				g := gr[gateCell*h+j]
				o := gr[gateOutput*h+j]

				dcell := dcn[j] + dhr[j]*o*(1-tr[j]*tr[j])
				dzr[gateInput*h+j] = dcell * g * i * (1 - i)
				dzr[gateForget*h+j] = dcell * cp[j] * f * (1 - f)
				dzr[gateCell*h+j] = dcell * i * (1 - g*g)
				dzr[gateOutput*h+j] = dhr[j] * tr[j] * o * (1 - o)
				dcr[j] = dcell * f
			}
		}
		dcNext = dc

		// accumulate the weight gradients in place across steps
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, s.x.RawMatrix(), dz.RawMatrix(), 1, l.kernel.Grad.RawMatrix())
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, s.hPrev.RawMatrix(), dz.RawMatrix(), 1, l.recurrent.Grad.RawMatrix())
		sumRowsInto(l.bias.Grad, dz)

		var dxt mat.Dense
		dxt.Mul(dz, l.kernel.Value.T())
		dx[t] = &dxt

		dhPrev := mat.NewDense(batch, h, nil)
		dhPrev.Mul(dz, l.recurrent.Value.T())
		if l.mask != nil {
			dhPrev.MulElem(dhPrev, l.mask)
		}
		dhNext = dhPrev
	}
	return dx
}

func (l *LSTM) Params() []*Param {
	return []*Param{l.kernel, l.recurrent, l.bias}
}

package network

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	batchNormMomentum = 0.99
	batchNormEpsilon  = 1e-3
)

// BatchNorm normalizes each feature with the batch statistics while
// training and with the moving averages at inference.
type BatchNorm struct {
	name       string
	gamma      *Param
	beta       *Param
	movingMean *Param
	movingVar  *Param

	xhat   *mat.Dense
	invStd []float64
}

func NewBatchNorm(name string) *BatchNorm {
	return &BatchNorm{name: name}
}

func (b *BatchNorm) Name() string { return b.name }

func (b *BatchNorm) Build(in Shape, rng *rand.Rand) (Shape, error) {
	if err := requireSingleStep(b.name, in); err != nil {
		return Shape{}, err
	}
	f := in.Features
	b.gamma = newParam(b.name+"/gamma", 1, f)
	b.beta = newParam(b.name+"/beta", 1, f)
	b.movingMean = newState(b.name+"/moving_mean", 1, f)
	b.movingVar = newState(b.name+"/moving_variance", 1, f)
	for j := 0; j < f; j++ {
		b.gamma.Value.Set(0, j, 1)
		b.movingVar.Value.Set(0, j, 1)
	}
	return in, nil
}

func (b *BatchNorm) Forward(x []*mat.Dense, training bool) []*mat.Dense {
	in := x[0]
	rows, cols := in.Dims()
	gamma := b.gamma.Value.RawRowView(0)
	beta := b.beta.Value.RawRowView(0)
	mean := make([]float64, cols)
	variance := make([]float64, cols)

	if training {
		for i := 0; i < rows; i++ {
			for j, v := range in.RawRowView(i) {
				mean[j] += v
			}
		}
		for j := range mean {
			mean[j] /= float64(rows)
		}
		for i := 0; i < rows; i++ {
			for j, v := range in.RawRowView(i) {
				d := v - mean[j]
				variance[j] += d * d
			}
		}
		mm := b.movingMean.Value.RawRowView(0)
		mv := b.movingVar.Value.RawRowView(0)
		for j := range variance {
			variance[j] /= float64(rows)
			mm[j] = batchNormMomentum*mm[j] + (1-batchNormMomentum)*mean[j]
			mv[j] = batchNormMomentum*mv[j] + (1-batchNormMomentum)*variance[j]
		}
	} else {
		copy(mean, b.movingMean.Value.RawRowView(0))
		copy(variance, b.movingVar.Value.RawRowView(0))
	}

	b.invStd = make([]float64, cols)
	for j := range variance {
		b.invStd[j] = 1 / math.Sqrt(variance[j]+batchNormEpsilon)
	}

	b.xhat = mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := in.RawRowView(i)
		xh := b.xhat.RawRowView(i)
		out := y.RawRowView(i)
		for j, v := range src {
			xh[j] = (v - mean[j]) * b.invStd[j]
			out[j] = gamma[j]*xh[j] + beta[j]
		}
	}
	return []*mat.Dense{y}
}

// Backward assumes the last Forward ran in training mode.
func (b *BatchNorm) Backward(dy []*mat.Dense) []*mat.Dense {
	grad := dy[0]
	rows, cols := grad.Dims()
	n := float64(rows)
	gamma := b.gamma.Value.RawRowView(0)
	dGamma := b.gamma.Grad.RawRowView(0)
	dBeta := b.beta.Grad.RawRowView(0)

	sumDxhat := make([]float64, cols)
	sumDxhatXhat := make([]float64, cols)
	for j := range dGamma {
		dGamma[j] = 0
		dBeta[j] = 0
	}
	for i := 0; i < rows; i++ {
		g := grad.RawRowView(i)
		xh := b.xhat.RawRowView(i)
		for j := range g {
			dGamma[j] += g[j] * xh[j]
			dBeta[j] += g[j]
			dxhat := g[j] * gamma[j]
			sumDxhat[j] += dxhat
			sumDxhatXhat[j] += dxhat * xh[j]
		}
	}

	dx := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		g := grad.RawRowView(i)
		xh := b.xhat.RawRowView(i)
		out := dx.RawRowView(i)
		for j := range g {
			dxhat := g[j] * gamma[j]
			out[j] = b.invStd[j] / n * (n*dxhat - sumDxhat[j] - xh[j]*sumDxhatXhat[j])
		}
	}
	return []*mat.Dense{dx}
}

func (b *BatchNorm) Params() []*Param {
	return []*Param{b.gamma, b.beta, b.movingMean, b.movingVar}
}

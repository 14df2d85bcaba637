package network

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Loss interface {
	Name() string
	// Compute returns the mean loss over the batch and its gradient
	// w.r.t. pred.
	Compute(pred, target *mat.Dense) (float64, *mat.Dense)
}

// CategoricalCrossEntropy expects softmax probabilities and one-hot
// targets. Probabilities are clipped to [Epsilon, 1-Epsilon].
type CategoricalCrossEntropy struct {
	Epsilon float64
}

func (CategoricalCrossEntropy) Name() string { return "categorical_crossentropy" }

func (c CategoricalCrossEntropy) Compute(pred, target *mat.Dense) (float64, *mat.Dense) {
	eps := c.Epsilon
	if eps == 0 {
		eps = 1e-7
	}
	rows, cols := pred.Dims()
	n := float64(rows)
	grad := mat.NewDense(rows, cols, nil)
	var loss float64
	for i := 0; i < rows; i++ {
		p := pred.RawRowView(i)
		y := target.RawRowView(i)
		g := grad.RawRowView(i)
		for j := range p {
			if y[j] == 0 {
				continue
			}
			clipped := math.Min(math.Max(p[j], eps), 1-eps)
			loss -= y[j] * math.Log(clipped)
			g[j] = -y[j] / clipped / n
		}
	}
	return loss / n, grad
}

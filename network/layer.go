package network

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrShapeMismatch = errors.New("shape mismatch")

// Shape describes one sample: Steps time steps of Features values.
// Layers that collapse the time axis output a single step.
type Shape struct {
	Steps    int
	Features int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Steps, s.Features)
}

// Param is a weight matrix and the gradient computed for it by the last
// backward pass. Non-trainable params (BatchNorm moving statistics) have
// no gradient but are still saved in checkpoints.
type Param struct {
	Name      string
	Value     *mat.Dense
	Grad      *mat.Dense
	Trainable bool
}

func newParam(name string, rows, cols int) *Param {
	return &Param{
		Name:      name,
		Value:     mat.NewDense(rows, cols, nil),
		Grad:      mat.NewDense(rows, cols, nil),
		Trainable: true,
	}
}

func newState(name string, rows, cols int) *Param {
	return &Param{Name: name, Value: mat.NewDense(rows, cols, nil)}
}

// Layer is one stage of a Sequential model. Activations are passed
// time-major: x[t] is the batch at step t, one row per sample.
type Layer interface {
	Name() string
	// Build allocates parameters for the input shape and returns the
	// output shape.
	Build(in Shape, rng *rand.Rand) (Shape, error)
	Forward(x []*mat.Dense, training bool) []*mat.Dense
	// Backward takes the gradient w.r.t. the last Forward output, fills
	// in parameter gradients and returns the gradient w.r.t. its input.
	Backward(dy []*mat.Dense) []*mat.Dense
	Params() []*Param
}

func requireSingleStep(name string, in Shape) error {
	if in.Steps != 1 {
		return errors.Wrapf(ErrShapeMismatch, "%s expects a single step, got input %v", name, in)
	}
	return nil
}

func glorotUniform(m *mat.Dense, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, (rng.Float64()*2-1)*limit)
		}
	}
}

// orthogonal fills an n x n matrix from the QR decomposition of a random
// normal matrix, signs fixed by the diagonal of R.
func orthogonal(n int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	var qr mat.QR
	qr.Factorize(mat.NewDense(n, n, data))

	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)
	for j := 0; j < n; j++ {
		if r.At(j, j) < 0 {
			for i := 0; i < n; i++ {
				q.Set(i, j, -q.At(i, j))
			}
		}
	}
	return &q
}

func addRowVector(m *mat.Dense, v *mat.Dense) {
	rows, _ := m.Dims()
	bias := v.RawRowView(0)
	for i := 0; i < rows; i++ {
		floats.Add(m.RawRowView(i), bias)
	}
}

// sumRowsInto adds the column sums of m to the single-row dst.
func sumRowsInto(dst *mat.Dense, m *mat.Dense) {
	rows, _ := m.Dims()
	out := dst.RawRowView(0)
	for i := 0; i < rows; i++ {
		floats.Add(out, m.RawRowView(i))
	}
}

// dropoutMask returns a mask of 0 and 1/(1-rate) entries.
func dropoutMask(rows, cols int, rate float64, rng *rand.Rand) *mat.Dense {
	mask := mat.NewDense(rows, cols, nil)
	scale := 1 / (1 - rate)
	raw := mask.RawMatrix().Data
	for i := range raw {
		if rng.Float64() >= rate {
			raw[i] = scale
		}
	}
	return mask
}

func zeroGrads(params ...*Param) {
	for _, p := range params {
		if p.Grad != nil {
			p.Grad.Zero()
		}
	}
}

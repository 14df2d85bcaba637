package network

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Model is a stack of layers trained with one loss and one optimizer.
// It is not safe for concurrent use.
type Model struct {
	Layers    []Layer
	Loss      Loss
	Optimizer Optimizer

	input  Shape
	output Shape
	shapes []Shape
	built  bool
}

func NewSequential(layers ...Layer) *Model {
	return &Model{Layers: layers}
}

func (m *Model) Compile(loss Loss, optimizer Optimizer) {
	m.Loss = loss
	m.Optimizer = optimizer
}

// Build allocates every layer's parameters for the given input shape,
// failing on the first layer that cannot accept its input.
func (m *Model) Build(in Shape, rng *rand.Rand) error {
	m.shapes = m.shapes[:0]
	shape := in
	for _, l := range m.Layers {
		out, err := l.Build(shape, rng)
		if err != nil {
			return errors.Wrapf(err, "building layer %s", l.Name())
		}
		m.shapes = append(m.shapes, out)
		shape = out
	}
	m.input = in
	m.output = shape
	m.built = true
	return nil
}

func (m *Model) InputShape() Shape  { return m.input }
func (m *Model) OutputShape() Shape { return m.output }

// CheckInput fails unless the model accepts windows of the given length
// with one feature and predicts the given number of classes.
func (m *Model) CheckInput(window, classes int) error {
	if !m.built {
		return errors.New("model is not built")
	}
	if m.input.Steps != window || m.input.Features != 1 {
		return errors.Wrapf(ErrShapeMismatch, "model expects input %v, dataset has (%d, 1)", m.input, window)
	}
	if m.output.Steps != 1 || m.output.Features != classes {
		return errors.Wrapf(ErrShapeMismatch, "model predicts %d classes, dataset has %d", m.output.Features, classes)
	}
	return nil
}

func (m *Model) checkBatch(steps []*mat.Dense, targets *mat.Dense) error {
	if len(steps) != m.input.Steps {
		return errors.Wrapf(ErrShapeMismatch, "batch has %d steps, model expects %d", len(steps), m.input.Steps)
	}
	batch, features := steps[0].Dims()
	if features != m.input.Features {
		return errors.Wrapf(ErrShapeMismatch, "batch has %d features, model expects %d", features, m.input.Features)
	}
	if targets != nil {
		rows, cols := targets.Dims()
		if rows != batch || cols != m.output.Features {
			return errors.Wrapf(ErrShapeMismatch, "targets are %dx%d, expected %dx%d", rows, cols, batch, m.output.Features)
		}
	}
	return nil
}

func (m *Model) forward(steps []*mat.Dense, training bool) *mat.Dense {
	x := steps
	for _, l := range m.Layers {
		x = l.Forward(x, training)
	}
	return x[0]
}

// Predict runs the model in inference mode and returns one row of class
// probabilities per sample.
func (m *Model) Predict(steps []*mat.Dense) (*mat.Dense, error) {
	if !m.built {
		return nil, errors.New("model is not built")
	}
	if err := m.checkBatch(steps, nil); err != nil {
		return nil, err
	}
	return m.forward(steps, false), nil
}

// TrainOnBatch runs one forward/backward pass in training mode and applies
// a single optimizer step. It returns the batch loss before the update.
func (m *Model) TrainOnBatch(steps []*mat.Dense, targets *mat.Dense) (float64, error) {
	if !m.built {
		return 0, errors.New("model is not built")
	}
	if m.Loss == nil || m.Optimizer == nil {
		return 0, errors.New("model is not compiled")
	}
	if err := m.checkBatch(steps, targets); err != nil {
		return 0, err
	}

	pred := m.forward(steps, true)
	loss, grad := m.Loss.Compute(pred, targets)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, errors.Errorf("loss diverged to %v", loss)
	}

	dy := []*mat.Dense{grad}
	for i := len(m.Layers) - 1; i >= 0; i-- {
		dy = m.Layers[i].Backward(dy)
	}
	m.Optimizer.Step(m.Params())
	return loss, nil
}

func (m *Model) Params() []*Param {
	var res []*Param
	for _, l := range m.Layers {
		res = append(res, l.Params()...)
	}
	return res
}

func (m *Model) CountParams() (trainable, nonTrainable int) {
	for _, p := range m.Params() {
		r, c := p.Value.Dims()
		if p.Trainable {
			trainable += r * c
		} else {
			nonTrainable += r * c
		}
	}
	return trainable, nonTrainable
}

// Weight is a serializable copy of one Param.
type Weight struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

func (m *Model) Weights() []Weight {
	params := m.Params()
	res := make([]Weight, len(params))
	for i, p := range params {
		r, c := p.Value.Dims()
		data := make([]float64, 0, r*c)
		for row := 0; row < r; row++ {
			data = append(data, p.Value.RawRowView(row)...)
		}
		res[i] = Weight{Name: p.Name, Rows: r, Cols: c, Data: data}
	}
	return res
}

// SetWeights loads weights saved from a model with the same topology.
func (m *Model) SetWeights(weights []Weight) error {
	params := m.Params()
	if len(weights) != len(params) {
		return errors.Wrapf(ErrShapeMismatch, "got %d weights for %d params", len(weights), len(params))
	}
	for i, p := range params {
		w := weights[i]
		r, c := p.Value.Dims()
		if w.Name != p.Name || w.Rows != r || w.Cols != c || len(w.Data) != r*c {
			return errors.Wrapf(ErrShapeMismatch, "weight %s %dx%d does not fit %s %dx%d", w.Name, w.Rows, w.Cols, p.Name, r, c)
		}
	}
	for i, p := range params {
		p.Value.Copy(mat.NewDense(weights[i].Rows, weights[i].Cols, weights[i].Data))
	}
	return nil
}

func (m *Model) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-12s %s\n", "Layer", "Output", "Params")
	for i, l := range m.Layers {
		var count int
		for _, p := range l.Params() {
			r, c := p.Value.Dims()
			count += r * c
		}
		out := ""
		if i < len(m.shapes) {
			out = m.shapes[i].String()
		}
		fmt.Fprintf(&b, "%-24s %-12s %d\n", l.Name(), out, count)
	}
	trainable, nonTrainable := m.CountParams()
	fmt.Fprintf(&b, "Trainable params: %d\nNon-trainable params: %d\n", trainable, nonTrainable)
	return b.String()
}

// Package rnn implements the recurrent sequence classifier: a single LSTM
// layer followed by one linear output unit, trained with Adam against a mean
// squared error loss. The trainer is self-contained pure Go so runs are fast
// and deterministic under a fixed seed.
//
// Fit may be called repeatedly on the same Model; every call continues from
// the current weights. The pipeline relies on this to fine-tune one shared
// model sequentially across subjects.
package rnn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config holds the model and training hyperparameters.
type Config struct {
	// HiddenSize is the LSTM hidden width. Default 40.
	HiddenSize int

	// LearningRate for Adam. Default 0.001.
	LearningRate float64

	// Epochs per Fit call. Default 20.
	Epochs int

	// BatchSize for mini-batch updates. Default 32.
	BatchSize int

	// Seed controls weight init and shuffling. If zero, a time-based seed
	// is used.
	Seed int64

	// Adam hyperparameters; defaults 0.9, 0.999, 1e-8.
	Beta1   float64
	Beta2   float64
	Epsilon float64

	// ClipNorm is the global gradient-norm clipping threshold. Default 5.
	ClipNorm float64
}

func (c Config) withDefaults() Config {
	if c.HiddenSize == 0 {
		c.HiddenSize = 40
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.001
	}
	if c.Epochs == 0 {
		c.Epochs = 20
	}
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Beta1 == 0 {
		c.Beta1 = 0.9
	}
	if c.Beta2 == 0 {
		c.Beta2 = 0.999
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1e-8
	}
	if c.ClipNorm == 0 {
		c.ClipNorm = 5
	}
	return c
}

// Model is the LSTM classifier. Gate weights are stored as stacked rows in
// i, f, g, o order: rows [0,H) input gate, [H,2H) forget gate, [2H,3H) cell
// candidate, [3H,4H) output gate.
type Model struct {
	Config Config

	inputDim int
	hidden   int

	// wx[r] weights input->gates, wh[r] weights hidden->gates, b gate
	// biases; why/by the linear readout from the final hidden state.
	wx [][]float32 // 4H x D
	wh [][]float32 // 4H x H
	b  []float32   // 4H
	wy []float32   // H
	by float32

	opt *adam
	rng *rand.Rand
}

// NewModel creates an LSTM classifier for inputs of dimension inputDim.
func NewModel(inputDim int, cfg Config) (*Model, error) {
	if inputDim < 1 {
		return nil, fmt.Errorf("input dimension must be >= 1, got %d", inputDim)
	}
	cfg = cfg.withDefaults()

	m := &Model{
		Config:   cfg,
		inputDim: inputDim,
		hidden:   cfg.HiddenSize,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}

	h := m.hidden
	m.wx = make([][]float32, 4*h)
	m.wh = make([][]float32, 4*h)
	m.b = make([]float32, 4*h)
	for r := 0; r < 4*h; r++ {
		m.wx[r] = m.initRow(inputDim, inputDim+h)
		m.wh[r] = m.initRow(h, inputDim+h)
	}
	// Forget-gate biases start at 1 so early training does not flush the
	// cell state.
	for r := h; r < 2*h; r++ {
		m.b[r] = 1
	}
	m.wy = m.initRow(h, h+1)
	m.opt = newAdam(m, cfg)
	return m, nil
}

// initRow draws a weight row with the Xavier/Glorot uniform heuristic.
func (m *Model) initRow(n, fan int) []float32 {
	limit := float32(math.Sqrt(6.0 / float64(fan)))
	row := make([]float32, n)
	for i := range row {
		row[i] = (m.rng.Float32()*2 - 1) * limit
	}
	return row
}

// seqCache stores everything the backward pass needs for one sequence.
type seqCache struct {
	xs             [][]float32 // T x D inputs
	hs, cs         [][]float32 // T+1 x H states, index 0 is the zero state
	ig, fg, gg, og [][]float32 // T x H gate activations
	tc             [][]float32 // T x H tanh(cell state)
}

// forward runs one sequence through the cell. When cache is non-nil the
// intermediate activations are recorded for backpropagation.
func (m *Model) forward(seq [][]float32, cache *seqCache) (float32, error) {
	if len(seq) == 0 {
		return 0, errors.New("empty sequence")
	}
	h := m.hidden

	hPrev := make([]float32, h)
	cPrev := make([]float32, h)
	if cache != nil {
		cache.xs = seq
		cache.hs = [][]float32{hPrev}
		cache.cs = [][]float32{cPrev}
	}

	for _, x := range seq {
		if len(x) != m.inputDim {
			return 0, fmt.Errorf("timestep has %d features, model expects %d", len(x), m.inputDim)
		}

		iG := make([]float32, h)
		fG := make([]float32, h)
		gG := make([]float32, h)
		oG := make([]float32, h)
		cNext := make([]float32, h)
		hNext := make([]float32, h)
		tC := make([]float32, h)

		for j := 0; j < h; j++ {
			iG[j] = sigmoid(m.gatePreact(j, x, hPrev))
			fG[j] = sigmoid(m.gatePreact(h+j, x, hPrev))
			gG[j] = tanh(m.gatePreact(2*h+j, x, hPrev))
			oG[j] = sigmoid(m.gatePreact(3*h+j, x, hPrev))

			cNext[j] = fG[j]*cPrev[j] + iG[j]*gG[j]
			tC[j] = tanh(cNext[j])
			hNext[j] = oG[j] * tC[j]
		}

		if cache != nil {
			cache.ig = append(cache.ig, iG)
			cache.fg = append(cache.fg, fG)
			cache.gg = append(cache.gg, gG)
			cache.og = append(cache.og, oG)
			cache.tc = append(cache.tc, tC)
			cache.hs = append(cache.hs, hNext)
			cache.cs = append(cache.cs, cNext)
		}
		hPrev = hNext
		cPrev = cNext
	}

	// Linear readout from the final hidden state.
	out := m.by
	for j := 0; j < h; j++ {
		out += m.wy[j] * hPrev[j]
	}
	return out, nil
}

// gatePreact computes row r of the stacked gate pre-activation for input x
// and previous hidden state hPrev.
func (m *Model) gatePreact(r int, x, hPrev []float32) float32 {
	sum := m.b[r]
	wx := m.wx[r]
	for i, v := range x {
		sum += wx[i] * v
	}
	wh := m.wh[r]
	for j, v := range hPrev {
		sum += wh[j] * v
	}
	return sum
}

// backward propagates dOut (dLoss/dOutput for this sequence) through the
// readout and the unrolled cell, accumulating into g.
func (m *Model) backward(cache *seqCache, dOut float32, g *gradients) {
	h := m.hidden
	T := len(cache.xs)

	hLast := cache.hs[T]
	dh := make([]float32, h)
	for j := 0; j < h; j++ {
		g.wy[j] += dOut * hLast[j]
		dh[j] = m.wy[j] * dOut
	}
	g.by += dOut

	dc := make([]float32, h)
	for t := T - 1; t >= 0; t-- {
		x := cache.xs[t]
		hPrev := cache.hs[t]
		cPrev := cache.cs[t]
		iG, fG, gG, oG, tC := cache.ig[t], cache.fg[t], cache.gg[t], cache.og[t], cache.tc[t]

		dhPrev := make([]float32, h)
		dcPrev := make([]float32, h)

		for j := 0; j < h; j++ {
			dcj := dc[j] + dh[j]*oG[j]*(1-tC[j]*tC[j])

			dzo := dh[j] * tC[j] * oG[j] * (1 - oG[j])
			dzi := dcj * gG[j] * iG[j] * (1 - iG[j])
			dzg := dcj * iG[j] * (1 - gG[j]*gG[j])
			dzf := dcj * cPrev[j] * fG[j] * (1 - fG[j])
			dcPrev[j] = dcj * fG[j]

			for r, dz := range [4]float32{dzi, dzf, dzg, dzo} {
				row := r*h + j
				gwx := g.wx[row]
				for i, v := range x {
					gwx[i] += dz * v
				}
				gwh := g.wh[row]
				wh := m.wh[row]
				for k := 0; k < h; k++ {
					gwh[k] += dz * hPrev[k]
					dhPrev[k] += wh[k] * dz
				}
				g.b[row] += dz
			}
		}
		dh = dhPrev
		dc = dcPrev
	}
}

// Predict returns the raw model score for every input window.
func (m *Model) Predict(x [][][]float32) ([]float32, error) {
	out := make([]float32, len(x))
	for i, seq := range x {
		y, err := m.forward(seq, nil)
		if err != nil {
			return nil, fmt.Errorf("predict window %d: %w", i, err)
		}
		out[i] = y
	}
	return out, nil
}

// Evaluate returns the MSE loss and the accuracy of 0.5-thresholded
// predictions over a labelled set.
func (m *Model) Evaluate(x [][][]float32, y []float32) (loss, accuracy float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("inputs and labels don't match: %d != %d", len(x), len(y))
	}
	if len(x) == 0 {
		return 0, 0, errors.New("empty evaluation set")
	}
	preds, err := m.Predict(x)
	if err != nil {
		return 0, 0, err
	}
	correct := 0
	for i, p := range preds {
		d := float64(p - y[i])
		loss += d * d
		if predictedClass(p) == y[i] {
			correct++
		}
	}
	loss /= float64(len(x))
	accuracy = float64(correct) / float64(len(x))
	return loss, accuracy, nil
}

func predictedClass(score float32) float32 {
	if score > 0.5 {
		return 1
	}
	return 0
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

package rnn

import (
	"errors"
	"fmt"
	"log"
	"math"
)

// gradients mirrors the model parameters.
type gradients struct {
	wx [][]float32
	wh [][]float32
	b  []float32
	wy []float32
	by float32
}

func newGradients(m *Model) *gradients {
	h := m.hidden
	g := &gradients{
		wx: make([][]float32, 4*h),
		wh: make([][]float32, 4*h),
		b:  make([]float32, 4*h),
		wy: make([]float32, h),
	}
	for r := range g.wx {
		g.wx[r] = make([]float32, m.inputDim)
		g.wh[r] = make([]float32, h)
	}
	return g
}

// scale divides every gradient by n (mini-batch averaging).
func (g *gradients) scale(n float32) {
	inv := 1 / n
	for r := range g.wx {
		for i := range g.wx[r] {
			g.wx[r][i] *= inv
		}
		for i := range g.wh[r] {
			g.wh[r][i] *= inv
		}
		g.b[r] *= inv
	}
	for i := range g.wy {
		g.wy[i] *= inv
	}
	g.by *= inv
}

// clip rescales the gradients so their global L2 norm does not exceed
// maxNorm.
func (g *gradients) clip(maxNorm float64) {
	var sum float64
	for r := range g.wx {
		for _, v := range g.wx[r] {
			sum += float64(v) * float64(v)
		}
		for _, v := range g.wh[r] {
			sum += float64(v) * float64(v)
		}
		sum += float64(g.b[r]) * float64(g.b[r])
	}
	for _, v := range g.wy {
		sum += float64(v) * float64(v)
	}
	sum += float64(g.by) * float64(g.by)

	norm := math.Sqrt(sum)
	if norm <= maxNorm || norm == 0 {
		return
	}
	s := float32(maxNorm / norm)
	for r := range g.wx {
		for i := range g.wx[r] {
			g.wx[r][i] *= s
		}
		for i := range g.wh[r] {
			g.wh[r][i] *= s
		}
		g.b[r] *= s
	}
	for i := range g.wy {
		g.wy[i] *= s
	}
	g.by *= s
}

// Fit trains the model on windowed sequences x with labels y for
// Config.Epochs passes of shuffled mini-batches. When valX is non-empty the
// validation loss over (valX, valY) is computed and logged after every epoch.
// Weights are updated in place, so successive Fit calls fine-tune the same
// model.
func (m *Model) Fit(x [][][]float32, y []float32, valX [][][]float32, valY []float32) error {
	if len(x) != len(y) {
		return fmt.Errorf("inputs and labels don't match: %d != %d", len(x), len(y))
	}
	if len(x) == 0 {
		return errors.New("no training sequences")
	}
	if len(valX) != len(valY) {
		return fmt.Errorf("validation inputs and labels don't match: %d != %d", len(valX), len(valY))
	}

	n := len(x)
	batchSize := m.Config.BatchSize
	if batchSize > n {
		batchSize = n
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for ep := 0; ep < m.Config.Epochs; ep++ {
		m.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var epochLoss float64
		for start := 0; start < n; start += batchSize {
			end := start + batchSize
			if end > n {
				end = n
			}
			batch := indices[start:end]

			loss, err := m.trainBatch(x, y, batch)
			if err != nil {
				return err
			}
			epochLoss += loss * float64(len(batch))
		}
		epochLoss /= float64(n)

		if len(valX) > 0 {
			valLoss, valAcc, err := m.Evaluate(valX, valY)
			if err != nil {
				return fmt.Errorf("validation after epoch %d: %w", ep+1, err)
			}
			log.Printf("epoch %d/%d loss=%.6f val_loss=%.6f val_acc=%.4f",
				ep+1, m.Config.Epochs, epochLoss, valLoss, valAcc)
		} else {
			log.Printf("epoch %d/%d loss=%.6f", ep+1, m.Config.Epochs, epochLoss)
		}
	}
	return nil
}

// trainBatch accumulates gradients over one mini-batch and applies a single
// Adam step. It returns the mean batch loss before the update.
func (m *Model) trainBatch(x [][][]float32, y []float32, batch []int) (float64, error) {
	g := newGradients(m)
	var loss float64

	for _, idx := range batch {
		cache := &seqCache{}
		pred, err := m.forward(x[idx], cache)
		if err != nil {
			return 0, fmt.Errorf("sequence %d: %w", idx, err)
		}
		diff := pred - y[idx]
		loss += float64(diff) * float64(diff)
		// dLoss/dOutput for the squared error of this example.
		m.backward(cache, 2*diff, g)
	}

	g.scale(float32(len(batch)))
	g.clip(m.Config.ClipNorm)
	m.opt.step(m, g)

	return loss / float64(len(batch)), nil
}

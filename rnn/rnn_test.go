package rnn

import (
	"io"
	"log"
	"math"
	"testing"
)

// separableSequences builds n sequences per class with a single feature. Class
// 0 hovers around lo, class 1 around hi, so any working classifier separates
// them.
func separableSequences(n, seqLen int, lo, hi float32) (x [][][]float32, y []float32) {
	for c, level := range []float32{lo, hi} {
		for i := 0; i < n; i++ {
			seq := make([][]float32, seqLen)
			for t := range seq {
				// Small deterministic ripple so timesteps are not identical.
				seq[t] = []float32{level + float32(t%2)*0.02 + float32(i%3)*0.01}
			}
			x = append(x, seq)
			y = append(y, float32(c))
		}
	}
	return x, y
}

func quietLogs(t *testing.T) {
	t.Helper()
	out := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(out) })
}

func TestFitLearnsSeparableSequences(t *testing.T) {
	quietLogs(t)

	x, y := separableSequences(20, 4, 0.1, 0.9)
	m, err := NewModel(1, Config{
		HiddenSize:   8,
		LearningRate: 0.01,
		Epochs:       80,
		BatchSize:    8,
		Seed:         1,
	})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}

	before, _, err := m.Evaluate(x, y)
	if err != nil {
		t.Fatalf("Evaluate before training: %v", err)
	}
	if err := m.Fit(x, y, nil, nil); err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	after, acc, err := m.Evaluate(x, y)
	if err != nil {
		t.Fatalf("Evaluate after training: %v", err)
	}

	if after >= before {
		t.Errorf("training did not reduce loss: before %.6f, after %.6f", before, after)
	}
	if acc < 0.9 {
		t.Errorf("accuracy on a separable task too low: %.4f", acc)
	}

	preds, err := m.Predict(x)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	for i, p := range preds {
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			t.Fatalf("prediction %d is not finite: %v", i, p)
		}
	}
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	quietLogs(t)

	x, y := separableSequences(10, 3, 0.2, 0.8)
	cfg := Config{HiddenSize: 6, Epochs: 5, BatchSize: 4, Seed: 42}

	var runs [2][]float32
	for i := range runs {
		m, err := NewModel(1, cfg)
		if err != nil {
			t.Fatalf("NewModel error: %v", err)
		}
		if err := m.Fit(x, y, nil, nil); err != nil {
			t.Fatalf("Fit error: %v", err)
		}
		preds, err := m.Predict(x)
		if err != nil {
			t.Fatalf("Predict error: %v", err)
		}
		runs[i] = preds
	}

	for i := range runs[0] {
		if runs[0][i] != runs[1][i] {
			t.Fatalf("prediction %d differs between same-seed runs: %v != %v",
				i, runs[0][i], runs[1][i])
		}
	}
}

func TestFitContinuesFromCurrentWeights(t *testing.T) {
	quietLogs(t)

	x, y := separableSequences(10, 3, 0.1, 0.9)
	m, err := NewModel(1, Config{HiddenSize: 6, Epochs: 3, BatchSize: 4, Seed: 7})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}

	if err := m.Fit(x, y, nil, nil); err != nil {
		t.Fatalf("first Fit error: %v", err)
	}
	first, err := m.Predict(x)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}

	if err := m.Fit(x, y, nil, nil); err != nil {
		t.Fatalf("second Fit error: %v", err)
	}
	second, err := m.Predict(x)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}

	changed := false
	for i := range first {
		if first[i] != second[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("second Fit call left the model unchanged")
	}
}

func TestFitValidationSet(t *testing.T) {
	quietLogs(t)

	x, y := separableSequences(8, 3, 0.1, 0.9)
	valX, valY := separableSequences(4, 3, 0.15, 0.85)

	m, err := NewModel(1, Config{HiddenSize: 6, Epochs: 2, BatchSize: 4, Seed: 3})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	if err := m.Fit(x, y, valX, valY); err != nil {
		t.Fatalf("Fit with validation set: %v", err)
	}
	if err := m.Fit(x, y, valX, valY[:1]); err == nil {
		t.Error("expected error for mismatched validation labels")
	}
}

func TestModelErrors(t *testing.T) {
	if _, err := NewModel(0, Config{}); err == nil {
		t.Error("expected error for zero input dimension")
	}

	m, err := NewModel(2, Config{HiddenSize: 4, Seed: 1})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	if err := m.Fit(nil, nil, nil, nil); err == nil {
		t.Error("expected error fitting on no sequences")
	}
	if err := m.Fit([][][]float32{{{1, 2}}}, []float32{1, 0}, nil, nil); err == nil {
		t.Error("expected error for mismatched inputs and labels")
	}
	if _, err := m.Predict([][][]float32{{{1, 2, 3}}}); err == nil {
		t.Error("expected error for wrong feature width")
	}
	if _, _, err := m.Evaluate(nil, nil); err == nil {
		t.Error("expected error evaluating an empty set")
	}
}

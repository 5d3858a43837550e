package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Window turns an ordered (rows, features) matrix into overlapping windows of
// windowSize consecutive rows. The result has shape
// (rows-windowSize+1, windowSize, features) and window i covers rows
// [i, i+windowSize). Windows are views over the input: no row data is copied,
// which is the slice-arithmetic equivalent of building an index matrix.
func Window(data [][]float32, windowSize int) ([][][]float32, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be >= 1, got %d", windowSize)
	}
	if windowSize > len(data) {
		return nil, fmt.Errorf("window size %d exceeds row count %d", windowSize, len(data))
	}

	windows := make([][][]float32, len(data)-windowSize+1)
	for i := range windows {
		windows[i] = data[i : i+windowSize]
	}
	return windows, nil
}

// AlignLabels aligns a raw per-row label vector with the windows produced by
// Window: the first windowSize-1 entries have no complete history and are
// dropped, so entry i of the result is the raw label at row i+windowSize-1.
func AlignLabels(labels []float32, windowSize int) ([]float32, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be >= 1, got %d", windowSize)
	}
	if windowSize > len(labels) {
		return nil, fmt.Errorf("window size %d exceeds label count %d", windowSize, len(labels))
	}
	return labels[windowSize-1:], nil
}

// WindowBatchFlat stores a windowed batch in flat contiguous buffers together
// with its shape metadata.
type WindowBatchFlat struct {
	Inputs     []float32 // batch * window * feature, row-major
	Labels     []float32 // batch
	BatchSize  int
	WindowSize int
	FeatureDim int
}

// MakeWindowBatchFlat flattens windows and their aligned labels into
// contiguous buffers.
func MakeWindowBatchFlat(windows [][][]float32, labels []float32) (*WindowBatchFlat, error) {
	if len(windows) != len(labels) {
		return nil, fmt.Errorf("windows and labels batch sizes don't match: %d != %d", len(windows), len(labels))
	}
	if len(windows) == 0 {
		return &WindowBatchFlat{}, nil
	}

	windowSize := len(windows[0])
	if windowSize == 0 {
		return nil, fmt.Errorf("empty window at example 0")
	}
	featureDim := len(windows[0][0])

	flat := make([]float32, 0, len(windows)*windowSize*featureDim)
	for i, w := range windows {
		if len(w) != windowSize {
			return nil, fmt.Errorf("inconsistent window length at example %d: expected %d, got %d", i, windowSize, len(w))
		}
		for j, row := range w {
			if len(row) != featureDim {
				return nil, fmt.Errorf("inconsistent feature dimension at example %d step %d: expected %d, got %d",
					i, j, featureDim, len(row))
			}
			flat = append(flat, row...)
		}
	}

	labelsCopy := make([]float32, len(labels))
	copy(labelsCopy, labels)

	return &WindowBatchFlat{
		Inputs:     flat,
		Labels:     labelsCopy,
		BatchSize:  len(windows),
		WindowSize: windowSize,
		FeatureDim: featureDim,
	}, nil
}

// ToGomlxTensors converts the flat batch into gomlx tensors of shape
// (batch, window, feature) and (batch,).
func (b *WindowBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 || b.WindowSize == 0 || b.FeatureDim == 0 {
		inT := tensors.FromAnyValue([][][]float32{})
		labT := tensors.FromAnyValue([]float32{})
		return inT, labT, nil
	}

	// Reshape the flat buffer into nested views for tensor construction.
	stride := b.WindowSize * b.FeatureDim
	inputs := make([][][]float32, b.BatchSize)
	for i := range b.BatchSize {
		window := make([][]float32, b.WindowSize)
		base := i * stride
		for j := range b.WindowSize {
			window[j] = b.Inputs[base+j*b.FeatureDim : base+(j+1)*b.FeatureDim]
		}
		inputs[i] = window
	}

	inT := tensors.FromAnyValue(inputs)
	labT := tensors.FromAnyValue(b.Labels)
	return inT, labT, nil
}

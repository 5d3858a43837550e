package preprocess

import "fmt"

// MinMaxScaler rescales every feature column into [0, 1] using the column
// minimum and maximum observed at Fit time. Transforming data with values
// outside the fitted range produces values outside [0, 1]; that is expected
// when test extrema exceed training extrema.
type MinMaxScaler struct {
	Min []float32
	Max []float32
}

// Fit computes per-column bounds over the given feature matrix. It must only
// ever see training rows.
func (m *MinMaxScaler) Fit(data [][]float32) error {
	if len(data) == 0 {
		return fmt.Errorf("cannot fit scaler on empty data")
	}
	dim := len(data[0])
	m.Min = make([]float32, dim)
	m.Max = make([]float32, dim)
	copy(m.Min, data[0])
	copy(m.Max, data[0])

	for i, row := range data {
		if len(row) != dim {
			return fmt.Errorf("inconsistent feature dimension at row %d: expected %d, got %d", i, dim, len(row))
		}
		for j, v := range row {
			if v < m.Min[j] {
				m.Min[j] = v
			}
			if v > m.Max[j] {
				m.Max[j] = v
			}
		}
	}
	return nil
}

// Transform applies the fitted bounds, returning a new matrix. Columns with
// zero range map to 0.
func (m *MinMaxScaler) Transform(data [][]float32) ([][]float32, error) {
	if m.Min == nil {
		return nil, fmt.Errorf("scaler has not been fitted")
	}
	out := make([][]float32, len(data))
	for i, row := range data {
		if len(row) != len(m.Min) {
			return nil, fmt.Errorf("row %d has %d features, scaler fitted on %d", i, len(row), len(m.Min))
		}
		scaled := make([]float32, len(row))
		for j, v := range row {
			span := m.Max[j] - m.Min[j]
			if span == 0 {
				scaled[j] = 0
				continue
			}
			scaled[j] = (v - m.Min[j]) / span
		}
		out[i] = scaled
	}
	return out, nil
}

package datasets

import "testing"

// makeRamp builds an (n, 1) matrix [[0],[1],...,[n-1]].
func makeRamp(n int) [][]float32 {
	data := make([][]float32, n)
	for i := range data {
		data[i] = []float32{float32(i)}
	}
	return data
}

func TestWindowRampScenario(t *testing.T) {
	windows, err := Window(makeRamp(10), 3)
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	if len(windows) != 8 {
		t.Fatalf("expected 8 windows, got %d", len(windows))
	}

	first := windows[0]
	for j, want := range []float32{0, 1, 2} {
		if first[j][0] != want {
			t.Errorf("first window step %d: want %v, got %v", j, want, first[j][0])
		}
	}
	last := windows[7]
	for j, want := range []float32{7, 8, 9} {
		if last[j][0] != want {
			t.Errorf("last window step %d: want %v, got %v", j, want, last[j][0])
		}
	}
}

func TestWindowContents(t *testing.T) {
	const rows, features, w = 17, 4, 5
	data := make([][]float32, rows)
	for i := range data {
		row := make([]float32, features)
		for j := range row {
			row[j] = float32(i*features + j)
		}
		data[i] = row
	}

	windows, err := Window(data, w)
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	if len(windows) != rows-w+1 {
		t.Fatalf("expected %d windows, got %d", rows-w+1, len(windows))
	}
	for i, win := range windows {
		if len(win) != w {
			t.Fatalf("window %d has length %d, want %d", i, len(win), w)
		}
		for j := range win {
			for k := range win[j] {
				if win[j][k] != data[i+j][k] {
					t.Fatalf("window %d step %d: want row %d of input", i, j, i+j)
				}
			}
		}
	}
}

func TestWindowErrors(t *testing.T) {
	if _, err := Window(makeRamp(3), 4); err == nil {
		t.Error("expected error when window size exceeds row count")
	}
	if _, err := Window(makeRamp(3), 0); err == nil {
		t.Error("expected error for zero window size")
	}
	// Window size equal to row count is the degenerate single-window case.
	windows, err := Window(makeRamp(3), 3)
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
}

func TestAlignLabels(t *testing.T) {
	labels := []float32{0, 1, 0, 1, 1, 0, 1}
	aligned, err := AlignLabels(labels, 3)
	if err != nil {
		t.Fatalf("AlignLabels error: %v", err)
	}
	if len(aligned) != len(labels)-2 {
		t.Fatalf("expected %d aligned labels, got %d", len(labels)-2, len(aligned))
	}
	for i := range aligned {
		if aligned[i] != labels[i+2] {
			t.Errorf("aligned[%d] = %v, want raw label at row %d (%v)", i, aligned[i], i+2, labels[i+2])
		}
	}

	if _, err := AlignLabels([]float32{1, 0}, 3); err == nil {
		t.Error("expected error when window size exceeds label count")
	}
}

func TestMakeWindowBatchFlat(t *testing.T) {
	windows, err := Window(makeRamp(6), 2)
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	labels, err := AlignLabels([]float32{0, 0, 1, 1, 0, 1}, 2)
	if err != nil {
		t.Fatalf("AlignLabels error: %v", err)
	}

	batch, err := MakeWindowBatchFlat(windows, labels)
	if err != nil {
		t.Fatalf("MakeWindowBatchFlat error: %v", err)
	}
	if batch.BatchSize != 5 || batch.WindowSize != 2 || batch.FeatureDim != 1 {
		t.Fatalf("unexpected batch shape: %d x %d x %d", batch.BatchSize, batch.WindowSize, batch.FeatureDim)
	}
	if len(batch.Inputs) != 10 {
		t.Fatalf("expected 10 flat inputs, got %d", len(batch.Inputs))
	}
	// window 3 covers rows [3, 5)
	if batch.Inputs[6] != 3 || batch.Inputs[7] != 4 {
		t.Errorf("window 3 flattened wrong: got [%v %v]", batch.Inputs[6], batch.Inputs[7])
	}

	if _, err := MakeWindowBatchFlat(windows, labels[:2]); err == nil {
		t.Error("expected error for mismatched windows and labels")
	}
}

func TestWindowBatchFlatToGomlxTensors(t *testing.T) {
	windows, err := Window(makeRamp(5), 3)
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	batch, err := MakeWindowBatchFlat(windows, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("MakeWindowBatchFlat error: %v", err)
	}

	inT, labT, err := batch.ToGomlxTensors()
	if err != nil {
		t.Fatalf("ToGomlxTensors error: %v", err)
	}
	if inT == nil || labT == nil {
		t.Fatal("expected non-nil tensors")
	}
}

package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/wildtrack/bearwander/datasets"
	"github.com/wildtrack/bearwander/preprocess"
	"github.com/wildtrack/bearwander/rnn"
)

func quietLogs(t *testing.T) {
	t.Helper()
	out := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(out) })
}

// testTable builds a table with two training subjects and a held-out subject
// whose labels alternate, so the windowed test labels contain both classes.
func testTable(t *testing.T) *datasets.Table {
	t.Helper()
	columns := []string{"FID", "Bear_ID", "datetime", "STEPLENGTH", "TURNANGLE", "utmx", "utmy"}

	var records [][]string
	fid := 0
	addRow := func(subject string, wandering bool) {
		fid++
		step, angle := "900", "0"
		if wandering {
			step, angle = "100", "90"
		}
		records = append(records, []string{
			fmt.Sprintf("%d", fid), subject, "2020-05-01 12:00",
			step, angle,
			fmt.Sprintf("%d", 452000+fid*13),
			fmt.Sprintf("%d", 6571000+fid*7),
		})
	}

	for _, subject := range []string{"1", "2"} {
		for i := 0; i < 5; i++ {
			addRow(subject, i%2 == 0)
		}
	}
	for i := 0; i < 6; i++ {
		addRow("79", i%2 == 0)
	}

	table, err := datasets.NewTable(columns, records)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	return table
}

func testConfig() Config {
	return Config{
		Preprocess: preprocess.Config{WindowSize: 3},
		Model:      rnn.Config{HiddenSize: 4, Epochs: 2, BatchSize: 4, Seed: 1},
	}
}

func TestPipelineRun(t *testing.T) {
	quietLogs(t)

	plotPath := filepath.Join(t.TempDir(), "roc.png")
	p := New(testTable(t), testConfig())

	res, err := p.Run(plotPath)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	split := p.Split()
	if split == nil {
		t.Fatal("split not populated after Run")
	}
	for _, subject := range split.SubjectOrder {
		if subject == "79" {
			t.Error("held-out subject must not be trained on")
		}
	}
	if len(split.SubjectOrder) != 2 {
		t.Errorf("want 2 training subjects, got %v", split.SubjectOrder)
	}

	if res.AUC < 0 || res.AUC > 1 {
		t.Errorf("AUC out of range: %v", res.AUC)
	}
	if res.TestAccuracy < 0 || res.TestAccuracy > 1 {
		t.Errorf("accuracy out of range: %v", res.TestAccuracy)
	}
	if res.TestLoss < 0 {
		t.Errorf("negative test loss: %v", res.TestLoss)
	}
	if res.PlotPath != plotPath {
		t.Errorf("plot path: want %s, got %s", plotPath, res.PlotPath)
	}
	if info, err := os.Stat(plotPath); err != nil {
		t.Errorf("ROC plot missing: %v", err)
	} else if info.Size() == 0 {
		t.Error("ROC plot is empty")
	}
}

func TestPipelineRunWithoutPlot(t *testing.T) {
	quietLogs(t)

	p := New(testTable(t), testConfig())
	res, err := p.Run("")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.PlotPath != "" {
		t.Errorf("expected empty plot path, got %q", res.PlotPath)
	}
}

func TestPipelineStageOrder(t *testing.T) {
	quietLogs(t)

	p := New(testTable(t), testConfig())
	if err := p.Fit(); err == nil {
		t.Error("expected error fitting before preprocessing")
	}
	if _, err := p.Evaluate(""); err == nil {
		t.Error("expected error evaluating before training")
	}

	if _, err := p.Run(""); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := p.Fit(); err == nil {
		t.Error("expected error on a second Fit call")
	}
}

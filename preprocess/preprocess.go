// Package preprocess turns the raw observation table into model-ready splits:
// it derives the wandering label, holds out one subject as the test set,
// min-max scales features on training statistics only, and partitions the
// remaining rows by subject for the sequential training loop.
package preprocess

import (
	"fmt"
	"log"
	"math"

	"github.com/wildtrack/bearwander/datasets"
)

// Config holds the preprocessing knobs. Zero values are filled in with the
// analysis defaults by Preprocess.
type Config struct {
	// WindowSize is the number of consecutive fixes per sequence window.
	// Default 5.
	WindowSize int

	// HoldoutSubject is the subject id held out as the test set.
	// Default "79".
	HoldoutSubject string

	// StepLengthBelow and TurnAngleAbove define the wandering label: a fix
	// is wandering when STEPLENGTH < StepLengthBelow and |TURNANGLE| >
	// TurnAngleAbove. Defaults 680 and 45.
	StepLengthBelow float32
	TurnAngleAbove  float32

	// ExtraDropColumns are bookkeeping columns removed from the feature set
	// in addition to the label sources and the timestamp.
	ExtraDropColumns []string
}

func (c Config) withDefaults() Config {
	if c.WindowSize == 0 {
		c.WindowSize = 5
	}
	if c.HoldoutSubject == "" {
		c.HoldoutSubject = "79"
	}
	if c.StepLengthBelow == 0 {
		c.StepLengthBelow = 680
	}
	if c.TurnAngleAbove == 0 {
		c.TurnAngleAbove = 45
	}
	return c
}

// Split is the immutable product of preprocessing. Training features stay
// unwindowed because windowing happens per subject during training; test
// features are windowed once and their labels aligned.
type Split struct {
	// XTrain are the scaled, unwindowed training feature rows and YTrain
	// their raw per-row labels (0 or 1).
	XTrain [][]float32
	YTrain []float32

	// XTest are the windowed scaled test features, YTest the aligned test
	// labels.
	XTest [][][]float32
	YTest []float32

	// SubjectOrder lists training subjects in first-encounter order;
	// SubjectRows maps each to its training row indices in original order.
	SubjectOrder []string
	SubjectRows  map[string][]int

	// Scaler holds the min-max bounds fit on the training rows.
	Scaler *MinMaxScaler

	// FeatureNames are the surviving feature columns, in header order.
	FeatureNames []string

	// WindowSize the split was built with.
	WindowSize int
}

// WanderingLabels derives the boolean behavior label for every row: 1 when
// the step length is below cfg.StepLengthBelow and the absolute turn angle
// exceeds cfg.TurnAngleAbove, else 0.
func WanderingLabels(t *datasets.Table, cfg Config) ([]float32, error) {
	cfg = cfg.withDefaults()

	steps, err := t.FloatColumn(datasets.StepLengthColumn)
	if err != nil {
		return nil, err
	}
	turns, err := t.FloatColumn(datasets.TurnAngleColumn)
	if err != nil {
		return nil, err
	}

	labels := make([]float32, len(steps))
	for i := range steps {
		if steps[i] < cfg.StepLengthBelow && float32(math.Abs(float64(turns[i]))) > cfg.TurnAngleAbove {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Preprocess runs the full preparation pass over the observation table.
func Preprocess(t *datasets.Table, cfg Config) (*Split, error) {
	cfg = cfg.withDefaults()
	log.Printf("Starting preprocessing")

	labels, err := WanderingLabels(t, cfg)
	if err != nil {
		return nil, fmt.Errorf("derive wandering labels: %w", err)
	}

	subjects, err := t.Subjects()
	if err != nil {
		return nil, err
	}

	// "Unnamed: 0" is the same row-index artifact under the name other
	// tooling gives it.
	drop := append([]string{
		datasets.StepLengthColumn,
		datasets.TurnAngleColumn,
		datasets.TimestampColumn,
		datasets.IndexColumn,
		"Unnamed: 0",
	}, cfg.ExtraDropColumns...)
	features, kept, err := t.Features(drop...)
	if err != nil {
		return nil, fmt.Errorf("project feature columns: %w", err)
	}

	// Split rows by holdout subject, keeping original order on both sides.
	var xTrainRaw, xTestRaw [][]float32
	var yTrain, yTestRaw []float32
	var trainSubjects []string
	for i, row := range features {
		if subjects[i] == cfg.HoldoutSubject {
			xTestRaw = append(xTestRaw, row)
			yTestRaw = append(yTestRaw, labels[i])
			continue
		}
		xTrainRaw = append(xTrainRaw, row)
		yTrain = append(yTrain, labels[i])
		trainSubjects = append(trainSubjects, subjects[i])
	}
	if len(xTrainRaw) == 0 {
		return nil, fmt.Errorf("no training rows left after holding out subject %q", cfg.HoldoutSubject)
	}
	if len(xTestRaw) == 0 {
		return nil, fmt.Errorf("holdout subject %q has no rows", cfg.HoldoutSubject)
	}

	// Partition training rows by subject, preserving first-encounter order
	// of subjects and row order within each.
	subjectRows := make(map[string][]int)
	var subjectOrder []string
	for i, id := range trainSubjects {
		if _, seen := subjectRows[id]; !seen {
			subjectOrder = append(subjectOrder, id)
		}
		subjectRows[id] = append(subjectRows[id], i)
	}

	scaler := &MinMaxScaler{}
	if err := scaler.Fit(xTrainRaw); err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	xTrain, err := scaler.Transform(xTrainRaw)
	if err != nil {
		return nil, fmt.Errorf("scale training features: %w", err)
	}
	xTestScaled, err := scaler.Transform(xTestRaw)
	if err != nil {
		return nil, fmt.Errorf("scale test features: %w", err)
	}

	// The test set is static, so it gets windowed here; training windows are
	// built per subject by the trainer.
	xTest, err := datasets.Window(xTestScaled, cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("window test features: %w", err)
	}
	yTest, err := datasets.AlignLabels(yTestRaw, cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("align test labels: %w", err)
	}

	log.Printf("Preprocessing done: %d training rows across %d subjects, %d test windows, %d features",
		len(xTrain), len(subjectOrder), len(xTest), len(kept))

	return &Split{
		XTrain:       xTrain,
		YTrain:       yTrain,
		XTest:        xTest,
		YTest:        yTest,
		SubjectOrder: subjectOrder,
		SubjectRows:  subjectRows,
		Scaler:       scaler,
		FeatureNames: kept,
		WindowSize:   cfg.WindowSize,
	}, nil
}

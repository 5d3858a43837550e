// Package pipeline runs the full analysis: preprocess the observation table,
// fine-tune one recurrent model sequentially across subjects, and evaluate
// ROC/AUC on the held-out subject.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/wildtrack/bearwander/datasets"
	"github.com/wildtrack/bearwander/eval"
	"github.com/wildtrack/bearwander/preprocess"
	"github.com/wildtrack/bearwander/rnn"
)

// Config collects the pipeline knobs. Zero values fall back to the analysis
// defaults (window 5, holdout "79", hidden 40, 20 epochs per subject).
type Config struct {
	Preprocess preprocess.Config
	Model      rnn.Config

	// Progress enables the per-subject progress bar during training.
	Progress bool
}

// Result is what one full run produces.
type Result struct {
	TestLoss     float64
	TestAccuracy float64
	AUC          float64
	FPR, TPR     []float64
	PlotPath     string
}

// Pipeline owns the table, the split, and the model for one run. Each stage
// populates its field exactly once; nothing is mutated after being set.
type Pipeline struct {
	cfg   Config
	table *datasets.Table

	split *preprocess.Split
	model *rnn.Model
}

// New creates a pipeline over an already-loaded observation table.
func New(table *datasets.Table, cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, table: table}
}

// Split exposes the preprocessing result once Run (or Preprocess) has built
// it.
func (p *Pipeline) Split() *preprocess.Split { return p.split }

// Preprocess builds the train/test split.
func (p *Pipeline) Preprocess() error {
	if p.split != nil {
		return nil
	}
	split, err := preprocess.Preprocess(p.table, p.cfg.Preprocess)
	if err != nil {
		return err
	}
	p.split = split
	return nil
}

// Fit trains one shared model by iterating subjects in first-encounter order.
// Every subject's rows are windowed and the same model instance is fine-tuned
// against them, validating on the full held-out test set each time. Later
// subjects build on the weights earlier subjects produced; the ordering is
// semantic and must not be parallelized.
func (p *Pipeline) Fit() error {
	if p.split == nil {
		return fmt.Errorf("pipeline has not been preprocessed")
	}
	if p.model != nil {
		return fmt.Errorf("pipeline has already been trained")
	}
	split := p.split

	if len(split.FeatureNames) == 0 {
		return fmt.Errorf("split has no feature columns")
	}
	model, err := rnn.NewModel(len(split.FeatureNames), p.cfg.Model)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	log.Printf("Fitting the model")
	start := time.Now()

	var bar *pb.ProgressBar
	if p.cfg.Progress {
		bar = pb.StartNew(len(split.SubjectOrder))
	}

	for _, subject := range split.SubjectOrder {
		rows := split.SubjectRows[subject]
		log.Printf("Training on bear %s (%d rows)", subject, len(rows))

		x := make([][]float32, len(rows))
		y := make([]float32, len(rows))
		for i, r := range rows {
			x[i] = split.XTrain[r]
			y[i] = split.YTrain[r]
		}

		xw, err := datasets.Window(x, split.WindowSize)
		if err != nil {
			return fmt.Errorf("window subject %s: %w", subject, err)
		}
		yw, err := datasets.AlignLabels(y, split.WindowSize)
		if err != nil {
			return fmt.Errorf("align labels for subject %s: %w", subject, err)
		}

		if err := model.Fit(xw, yw, split.XTest, split.YTest); err != nil {
			return fmt.Errorf("fit subject %s: %w", subject, err)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	log.Printf("Training completed in %v", time.Since(start))
	p.model = model
	return nil
}

// Evaluate scores the trained model on the held-out subject, renders the ROC
// plot to plotPath, and returns the summary metrics.
func (p *Pipeline) Evaluate(plotPath string) (*Result, error) {
	if p.model == nil {
		return nil, fmt.Errorf("pipeline has not been trained")
	}
	split := p.split

	loss, acc, err := p.model.Evaluate(split.XTest, split.YTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate test set: %w", err)
	}
	log.Printf("Final test loss %.4f, accuracy %.2f", loss, acc)

	scores, err := p.model.Predict(split.XTest)
	if err != nil {
		return nil, fmt.Errorf("predict test set: %w", err)
	}
	preds := eval.Threshold(scores, 0.5)

	fpr, tpr, err := eval.ROCCurve(split.YTest, preds)
	if err != nil {
		return nil, fmt.Errorf("ROC curve: %w", err)
	}
	auc, err := eval.AUC(fpr, tpr)
	if err != nil {
		return nil, fmt.Errorf("AUC: %w", err)
	}
	log.Printf("AUC = %.4f", auc)

	if plotPath != "" {
		if err := eval.PlotROC(plotPath, fpr, tpr, auc); err != nil {
			return nil, fmt.Errorf("write ROC plot: %w", err)
		}
		log.Printf("ROC plot written to %s", plotPath)
	}

	return &Result{
		TestLoss:     loss,
		TestAccuracy: acc,
		AUC:          auc,
		FPR:          fpr,
		TPR:          tpr,
		PlotPath:     plotPath,
	}, nil
}

// Run executes the whole pipeline: preprocess, fit, evaluate.
func (p *Pipeline) Run(plotPath string) (*Result, error) {
	if err := p.Preprocess(); err != nil {
		return nil, err
	}
	if err := p.Fit(); err != nil {
		return nil, err
	}
	return p.Evaluate(plotPath)
}

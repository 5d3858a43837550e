// Command bearwander trains the wandering-behavior classifier on the bundled
// bear telemetry and writes the ROC/AUC plot. Running it with no arguments
// performs the full pipeline with the analysis defaults.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akamensky/argparse"

	"github.com/wildtrack/bearwander/datasets"
	"github.com/wildtrack/bearwander/pipeline"
	"github.com/wildtrack/bearwander/preprocess"
	"github.com/wildtrack/bearwander/rnn"
)

func main() {
	parser := argparse.NewParser("bearwander", "wandering vs. directed movement classifier for bear telemetry")

	dataDir := parser.String("d", "data", &argparse.Options{
		Default: ".",
		Help:    "Base directory holding data.zip (or an already-extracted data/ directory)",
	})
	plotPath := parser.String("p", "plot", &argparse.Options{
		Default: "roc_auc_curve.png",
		Help:    "Output path for the ROC/AUC plot",
	})
	windowSize := parser.Int("w", "window", &argparse.Options{
		Default: 5,
		Help:    "Number of consecutive fixes per sequence window",
	})
	holdout := parser.String("", "holdout", &argparse.Options{
		Default: "79",
		Help:    "Subject id held out as the test set",
	})
	hidden := parser.Int("", "hidden", &argparse.Options{
		Default: 40,
		Help:    "LSTM hidden width",
	})
	epochs := parser.Int("e", "epochs", &argparse.Options{
		Default: 20,
		Help:    "Training epochs per subject",
	})
	seed := parser.Int("s", "seed", &argparse.Options{
		Default: 0,
		Help:    "Random seed (0 = time-based)",
	})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	dir, err := datasets.Unpack(*dataDir)
	if err != nil {
		log.Fatalf("unpack data: %v", err)
	}

	table, err := datasets.Load(dir)
	if err != nil {
		log.Fatalf("load observations: %v", err)
	}
	log.Printf("Loaded %d observations from %s", table.NumRows(), dir)

	p := pipeline.New(table, pipeline.Config{
		Preprocess: preprocess.Config{
			WindowSize:     *windowSize,
			HoldoutSubject: *holdout,
		},
		Model: rnn.Config{
			HiddenSize: *hidden,
			Epochs:     *epochs,
			Seed:       int64(*seed),
		},
		Progress: true,
	})

	res, err := p.Run(*plotPath)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
	log.Printf("Done: test accuracy %.2f, AUC %.4f (%s)", res.TestAccuracy, res.AUC, res.PlotPath)
}

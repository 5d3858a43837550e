package eval

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotROC writes a PNG of the ROC curve to path, overwriting any existing
// file there. The plot carries the conventional diagonal reference line and
// reports the AUC in the legend.
func PlotROC(path string, fpr, tpr []float64, auc float64) error {
	p, err := buildROCPlot(fpr, tpr, auc)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}

func buildROCPlot(fpr, tpr []float64, auc float64) (*plot.Plot, error) {
	if len(fpr) != len(tpr) {
		return nil, fmt.Errorf("fpr and tpr don't match: %d != %d", len(fpr), len(tpr))
	}

	p := plot.New()
	p.Title.Text = "Receiver operating characteristic example"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.05

	curve := make(plotter.XYs, len(fpr))
	for i := range fpr {
		curve[i] = plotter.XY{X: fpr[i], Y: tpr[i]}
	}
	rocLine, err := plotter.NewLine(curve)
	if err != nil {
		return nil, err
	}
	rocLine.Color = color.RGBA{R: 255, G: 140, B: 0, A: 255} // dark orange
	rocLine.Width = vg.Points(2)
	p.Add(rocLine)
	p.Legend.Add(fmt.Sprintf("ROC curve (area = %.2f)", auc), rocLine)

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, err
	}
	diag.Color = color.RGBA{R: 0, G: 0, B: 128, A: 255} // navy
	diag.Width = vg.Points(2)
	diag.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(diag)

	p.Legend.Top = false
	p.Legend.Left = false

	return p, nil
}

// Package eval computes classification metrics for the wandering classifier
// (accuracy, ROC curve, AUC) and renders the ROC plot.
package eval

import (
	"fmt"
	"sort"
)

// Accuracy returns the fraction of predictions matching the true labels.
func Accuracy(yTrue, yPred []float32) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("labels and predictions don't match: %d != %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("empty label set")
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// Threshold converts scores to hard 0/1 predictions at the given cutoff.
func Threshold(scores []float32, cutoff float32) []float32 {
	out := make([]float32, len(scores))
	for i, s := range scores {
		if s > cutoff {
			out[i] = 1
		}
	}
	return out
}

// ROCCurve computes the receiver operating characteristic of scores against
// binary truth labels (nonzero = positive). Thresholds are the distinct score
// values in decreasing order, and the curve is anchored at (0, 0), so binary
// 0/1 predictions yield the usual three-point curve.
func ROCCurve(yTrue, yScore []float32) (fpr, tpr []float64, err error) {
	if len(yTrue) != len(yScore) {
		return nil, nil, fmt.Errorf("labels and scores don't match: %d != %d", len(yTrue), len(yScore))
	}
	if len(yTrue) == 0 {
		return nil, nil, fmt.Errorf("empty label set")
	}

	var pos, neg float64
	for _, t := range yTrue {
		if t != 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, nil, fmt.Errorf("ROC needs both classes present (positives=%v, negatives=%v)", pos, neg)
	}

	order := make([]int, len(yScore))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore[order[a]] > yScore[order[b]]
	})

	fpr = []float64{0}
	tpr = []float64{0}
	var tp, fp float64
	for k, idx := range order {
		if yTrue[idx] != 0 {
			tp++
		} else {
			fp++
		}
		// Emit a point only after consuming every example at this score.
		if k+1 < len(order) && yScore[order[k+1]] == yScore[idx] {
			continue
		}
		fpr = append(fpr, fp/neg)
		tpr = append(tpr, tp/pos)
	}
	return fpr, tpr, nil
}

// AUC integrates the ROC curve with the trapezoidal rule.
func AUC(fpr, tpr []float64) (float64, error) {
	if len(fpr) != len(tpr) {
		return 0, fmt.Errorf("fpr and tpr don't match: %d != %d", len(fpr), len(tpr))
	}
	if len(fpr) < 2 {
		return 0, fmt.Errorf("need at least two curve points, got %d", len(fpr))
	}
	var area float64
	for i := 1; i < len(fpr); i++ {
		area += (fpr[i] - fpr[i-1]) * (tpr[i] + tpr[i-1]) / 2
	}
	return area, nil
}

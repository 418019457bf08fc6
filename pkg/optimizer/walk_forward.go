package optimizer

import (
	"context"
	"fmt"

	"github.com/raykavin/backengine/pkg/backtest"
)

// WalkForwardFold is one in-sample/out-of-sample evaluation: the
// parameter set chosen by optimizing on the in-sample window, and the
// Result of evaluating that same set on the following out-of-sample
// window.
type WalkForwardFold struct {
	InSampleStart, InSampleEnd   int
	OutSampleStart, OutSampleEnd int
	BestInSample                 *Result
	OutOfSample                  *Result
}

// WalkForward partitions data into rolling in-sample/out-of-sample
// windows, re-optimizes on each in-sample window via opt, and
// evaluates the chosen parameter set out-of-sample — the standard
// defense against an optimizer simply overfitting the whole series.
func WalkForward(
	ctx context.Context,
	data *backtest.PreparedData,
	inSampleBars, outSampleBars int,
	opt Optimizer,
	buildEvaluator func(*backtest.PreparedData) Evaluator,
	targetMetric MetricName,
	maximize bool,
) ([]WalkForwardFold, error) {
	if inSampleBars <= 0 || outSampleBars <= 0 {
		return nil, fmt.Errorf("in-sample and out-of-sample window sizes must be positive")
	}

	n := data.Len()
	var folds []WalkForwardFold

	for start := 0; start+inSampleBars+outSampleBars <= n; start += outSampleBars {
		inEnd := start + inSampleBars
		outEnd := inEnd + outSampleBars

		inSample := &backtest.PreparedData{Bars: data.Bars[start:inEnd]}
		outSample := &backtest.PreparedData{Bars: data.Bars[inEnd:outEnd]}

		inEvaluator := buildEvaluator(inSample)
		results, err := opt.Optimize(ctx, inEvaluator, targetMetric, maximize)
		if err != nil {
			return folds, fmt.Errorf("fold [%d:%d) in-sample optimize: %w", start, inEnd, err)
		}
		if len(results) == 0 {
			return folds, fmt.Errorf("fold [%d:%d) in-sample optimize returned no results", start, inEnd)
		}
		best := results[0]

		outEvaluator := buildEvaluator(outSample)
		outResult, err := outEvaluator.Evaluate(ctx, best.Parameters)
		if err != nil {
			return folds, fmt.Errorf("fold [%d:%d) out-of-sample evaluate: %w", inEnd, outEnd, err)
		}

		folds = append(folds, WalkForwardFold{
			InSampleStart:  start,
			InSampleEnd:    inEnd,
			OutSampleStart: inEnd,
			OutSampleEnd:   outEnd,
			BestInSample:   best,
			OutOfSample:    outResult,
		})
	}

	return folds, nil
}

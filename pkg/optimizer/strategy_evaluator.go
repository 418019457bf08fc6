package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/backengine/pkg/backtest"
	"github.com/raykavin/backengine/pkg/metric"
)

// ParamBuilder maps one optimizer trial's ParameterSet onto a full
// backtest.ParamBundle. Callers supply this because the parameter
// names an optimizer sweeps (e.g. "sl_pct", "atr_period") are a choice
// of the strategy being tuned, not something this package can fix.
type ParamBuilder func(ParameterSet) (*backtest.ParamBundle, error)

// BacktestEvaluator runs one backtest.Run per trial and turns its
// output buffers into the Metrics map an Optimizer sorts on.
type BacktestEvaluator struct {
	data           *backtest.PreparedData
	build          ParamBuilder
	periodsPerYear float64
}

// NewBacktestEvaluator builds an Evaluator over a fixed input series.
// periodsPerYear annualizes Sharpe/Sortino (0 disables annualization).
func NewBacktestEvaluator(data *backtest.PreparedData, build ParamBuilder, periodsPerYear float64) *BacktestEvaluator {
	return &BacktestEvaluator{data: data, build: build, periodsPerYear: periodsPerYear}
}

// Evaluate implements Evaluator: build the bundle, run the backtest,
// summarize it, and report the result as a parameter/metric pair.
func (e *BacktestEvaluator) Evaluate(ctx context.Context, params ParameterSet) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()

	bundle, err := e.build(params)
	if err != nil {
		return nil, fmt.Errorf("build param bundle: %w", err)
	}

	buf, err := backtest.Run(e.data, bundle)
	if err != nil {
		return nil, fmt.Errorf("run backtest: %w", err)
	}

	summary := metric.Evaluate(buf, e.periodsPerYear)

	return &Result{
		Parameters: params,
		Metrics: map[string]float64{
			string(MetricProfit):      summary.TotalReturnPct,
			string(MetricSharpeRatio): summary.SharpeRatio,
			"sortino_ratio":           summary.SortinoRatio,
			"calmar_ratio":            summary.CalmarRatio,
			string(MetricDrawdown):    summary.MaxDrawdown,
			string(MetricWinRate):     summary.WinRate,
			string(MetricTradeCount):  float64(summary.TradeCount),
		},
		Duration: time.Since(start),
	}, nil
}

// Package metric turns a finished backtest.OutputBuffers into the
// handful of summary statistics an optimizer or report cares about:
// risk-adjusted return (Sharpe, Sortino, Calmar) and drawdown duration.
package metric

import (
	"math"

	"github.com/raykavin/backengine/pkg/backtest"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// bootstrapSamples and bootstrapConfidence match the teacher's own
// Bootstrap call sites (backnrun.go's confidence-interval report).
const (
	bootstrapSamples    = 10000
	bootstrapConfidence = 0.95
)

// Summary is the fixed set of performance statistics derived from one
// completed run's output buffers.
type Summary struct {
	TotalReturnPct      float64
	SharpeRatio         float64
	SortinoRatio        float64
	CalmarRatio         float64
	MaxDrawdown         float64
	MaxDrawdownDuration int // longest run of consecutive bars strictly below the running peak
	TradeCount          int
	WinRate             float64
	ReturnCI            BootstrapInterval // bootstrap confidence interval on the mean trade return
}

// Evaluate computes a Summary from buf. periodsPerYear annualizes the
// Sharpe/Sortino ratios (e.g. 252 for daily bars, 0 disables
// annualization and returns the per-bar ratio).
func Evaluate(buf *backtest.OutputBuffers, periodsPerYear float64) Summary {
	n := buf.Len()
	if n == 0 {
		return Summary{}
	}

	returns := tradeReturns(buf.TradePnLPct)
	mean, stdDev := stat.MeanStdDev(buf.TradePnLPct, nil)

	annualize := 1.0
	if periodsPerYear > 0 {
		annualize = math.Sqrt(periodsPerYear)
	}

	var sharpe float64
	if stdDev > 0 {
		sharpe = (mean / stdDev) * annualize
	}

	downside := lo.Filter(buf.TradePnLPct, func(r float64, _ int) bool { return r < 0 })
	var sortino float64
	if len(downside) > 0 {
		_, downsideDev := stat.MeanStdDev(downside, nil)
		if downsideDev > 0 {
			sortino = (mean / downsideDev) * annualize
		}
	}

	maxDD, ddDuration := maxDrawdown(buf.CurrentDrawdown)

	var calmar float64
	if maxDD > 0 {
		calmar = buf.TotalReturnPct[n-1] / maxDD
	}

	wins := lo.CountBy(returns, func(r float64) bool { return r > 0 })
	var winRate float64
	if len(returns) > 0 {
		winRate = float64(wins) / float64(len(returns))
	}

	var returnCI BootstrapInterval
	if len(returns) > 0 {
		returnCI = Bootstrap(returns, meanMeasure, bootstrapSamples, bootstrapConfidence)
	}

	return Summary{
		TotalReturnPct:      buf.TotalReturnPct[n-1],
		SharpeRatio:         sharpe,
		SortinoRatio:        sortino,
		CalmarRatio:         calmar,
		MaxDrawdown:         maxDD,
		MaxDrawdownDuration: ddDuration,
		TradeCount:          len(returns),
		WinRate:             winRate,
		ReturnCI:            returnCI,
	}
}

// meanMeasure is the Bootstrap measure function for the trade-return
// confidence interval, matching the teacher's own metric.Mean.
func meanMeasure(values []float64) float64 {
	return stat.Mean(values, nil)
}

// tradeReturns extracts the non-zero entries of a per-bar PnL-pct
// column, i.e. the bars where a position actually settled.
func tradeReturns(pnlPct []float64) []float64 {
	return lo.Filter(pnlPct, func(r float64, _ int) bool { return r != 0 })
}

// maxDrawdown returns the largest drawdown value and the longest run
// of consecutive bars spent away from a fresh equity peak (drawdown > 0).
func maxDrawdown(dd []float64) (float64, int) {
	var maxDD float64
	var cur, longest int
	for _, v := range dd {
		if v > maxDD {
			maxDD = v
		}
		if v > 0 {
			cur++
			if cur > longest {
				longest = cur
			}
		} else {
			cur = 0
		}
	}
	return maxDD, longest
}

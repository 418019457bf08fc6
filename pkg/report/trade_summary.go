// Package report renders a finished backtest.OutputBuffers as
// human-readable text: a win/loss/payoff table and an ASCII
// equity-curve histogram.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/backengine/pkg/backtest"
)

// TradeSummary collects win/loss statistics from the non-zero entries
// of a run's per-bar PnL-pct column — the bars where a position
// actually settled.
type TradeSummary struct {
	Instrument  string
	WinPercent  []float64
	LosePercent []float64
	Volume      float64
}

// NewTradeSummary derives a TradeSummary from buf.TradePnLPct.
func NewTradeSummary(instrument string, buf *backtest.OutputBuffers) TradeSummary {
	s := TradeSummary{Instrument: instrument}
	for _, pct := range buf.TradePnLPct {
		switch {
		case pct > 0:
			s.WinPercent = append(s.WinPercent, pct)
		case pct < 0:
			s.LosePercent = append(s.LosePercent, pct)
		}
	}
	for _, v := range buf.Fee {
		s.Volume += v
	}
	return s
}

// Profit returns the sum of every settled trade's PnL-pct.
func (s TradeSummary) Profit() float64 {
	return sumSlice(s.WinPercent) + sumSlice(s.LosePercent)
}

// SQN is the System Quality Number: sqrt(n) * mean/stddev of trade returns.
func (s TradeSummary) SQN() float64 {
	all := append(append([]float64{}, s.WinPercent...), s.LosePercent...)
	n := float64(len(all))
	if n == 0 {
		return 0
	}
	mean := s.Profit() / n

	var variance float64
	for _, v := range all {
		variance += math.Pow(v-mean, 2)
	}
	stdDev := math.Sqrt(variance / n)
	if stdDev == 0 {
		return 0
	}
	return math.Sqrt(n) * (mean / stdDev)
}

// Payoff is the ratio of average win to average loss magnitude.
func (s TradeSummary) Payoff() float64 {
	if len(s.WinPercent) == 0 || len(s.LosePercent) == 0 {
		return 0
	}
	avgWin := average(s.WinPercent)
	avgLoss := average(s.LosePercent)
	if avgLoss == 0 {
		return 0
	}
	return avgWin / math.Abs(avgLoss)
}

// ProfitFactor is the ratio of gross wins to gross losses.
func (s TradeSummary) ProfitFactor() float64 {
	if len(s.LosePercent) == 0 {
		return 0
	}
	grossProfit := sumSlice(s.WinPercent)
	grossLoss := sumSlice(s.LosePercent)
	if grossLoss == 0 {
		return 0
	}
	return grossProfit / math.Abs(grossLoss)
}

// WinPercentage is the fraction of settled trades that were winners, 0-100.
func (s TradeSummary) WinPercentage() float64 {
	total := len(s.WinPercent) + len(s.LosePercent)
	if total == 0 {
		return 0
	}
	return float64(len(s.WinPercent)) / float64(total) * 100
}

// String renders the summary as a text table.
func (s TradeSummary) String() string {
	b := &strings.Builder{}
	table := tablewriter.NewWriter(b)

	data := [][]string{
		{"Instrument", s.Instrument},
		{"Trades", strconv.Itoa(len(s.WinPercent) + len(s.LosePercent))},
		{"Win", strconv.Itoa(len(s.WinPercent))},
		{"Loss", strconv.Itoa(len(s.LosePercent))},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.1f", s.Payoff()*100)},
		{"Pr.Fact", fmt.Sprintf("%.1f", s.ProfitFactor()*100)},
		{"SQN", fmt.Sprintf("%.2f", s.SQN())},
		{"Profit %", fmt.Sprintf("%.4f", s.Profit()*100)},
		{"Fees", fmt.Sprintf("%.4f", s.Volume)},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return b.String()
}

func sumSlice(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumSlice(values) / float64(len(values))
}

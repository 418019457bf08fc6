package report

import (
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/raykavin/backengine/pkg/backtest"
)

// EquityCurveASCII renders a histogram of per-bar equity values,
// giving a quick terminal view of where a run spent most of its time
// without needing a plotting library.
func EquityCurveASCII(buf *backtest.OutputBuffers, bins int) string {
	if buf.Len() == 0 {
		return ""
	}
	hist := histogram.Hist(bins, buf.Equity)

	b := &strings.Builder{}
	histogram.Fprint(b, hist, histogram.Linear(40))
	return b.String()
}

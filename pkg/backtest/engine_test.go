package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBar(o, h, l, c float64, el, xl, es, xs bool) Bar {
	return Bar{Open: o, High: h, Low: l, Close: c, ATR: math.NaN(), EnterLong: el, ExitLong: xl, EnterShort: es, ExitShort: xs}
}

func baseParams() *ParamBundle {
	return &ParamBundle{InitialCapital: 10000, FeeFixed: 0, FeePct: 0, SLExitInBar: true, TPExitInBar: true}
}

// S1 — single long win, no risk.
func TestScenarioS1SingleLongWin(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(100, 100, 100, 100, false, true, false, false),
		flatBar(110, 110, 110, 110, false, false, false, false),
	}}
	buf, err := Run(data, baseParams())
	require.NoError(t, err)

	assert.Equal(t, 100.0, buf.EntryLongPrice[1])
	assert.Equal(t, 110.0, buf.ExitLongPrice[2])
	assert.InDelta(t, 0.10, buf.TradePnLPct[2], 1e-9)
	assert.InDelta(t, 11000.0, buf.Balance[2], 1e-6)
	assert.Equal(t, HoldLongFirst, FrameState(buf.FrameStateID[1]))
	assert.Equal(t, ExitLongSignal, FrameState(buf.FrameStateID[2]))
}

// S2 — SL in-bar.
func TestScenarioS2StopLossInBar(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(100, 100, 100, 100, false, false, false, false),
		flatBar(99, 99, 94, 95, false, false, false, false),
	}}
	p := baseParams()
	p.SLPct = &RiskParam{Value: 0.05}
	buf, err := Run(data, p)
	require.NoError(t, err)

	assert.InDelta(t, 95.0, buf.ExitLongPrice[2], 1e-9)
	assert.Equal(t, ExitLongRisk, FrameState(buf.FrameStateID[2]))
	assert.Equal(t, int8(1), buf.RiskInBarDirection[2])
}

// S3 — TP in-bar.
func TestScenarioS3TakeProfitInBar(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(100, 100, 100, 100, false, false, false, false),
		flatBar(105, 112, 105, 110, false, false, false, false),
	}}
	p := baseParams()
	p.TPPct = &RiskParam{Value: 0.1}
	buf, err := Run(data, p)
	require.NoError(t, err)

	assert.InDelta(t, 110.0, buf.ExitLongPrice[2], 1e-9)
	assert.InDelta(t, 0.10, buf.TradePnLPct[2], 1e-9)
}

// S4 — gap-blocked entry.
func TestScenarioS4GapBlocked(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(94, 94, 94, 94, false, false, false, false),
	}}
	p := baseParams()
	p.SLPct = &RiskParam{Value: 0.05}
	buf, err := Run(data, p)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(buf.EntryLongPrice[1]))
	assert.Equal(t, GapBlocked, FrameState(buf.FrameStateID[1]))
}

// S5 — trailing-stop ratchet (next-bar settlement).
func TestScenarioS5TrailingStopRatchet(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(100, 110, 108, 110, false, false, false, false),
		flatBar(110, 115, 113, 115, false, false, false, false),
		flatBar(113, 112, 105, 106, false, false, false, false),
		flatBar(105, 106, 104, 105, false, false, false, false),
	}}
	p := baseParams()
	p.TSLPct = &RiskParam{Value: 0.05}
	buf, err := Run(data, p)
	require.NoError(t, err)

	// Anchor ratchets 100 -> 110 -> 115 across bars 1-3, so the TSL
	// threshold at bar 3 is 115*0.95 = 109.25, breached by close=106
	// (next-bar mode probes close while UseExtremaForExit is off);
	// settlement is deferred to bar 4's open.
	assert.InDelta(t, 105.0, buf.ExitLongPrice[4], 1e-9)
}

// S6 — reversal.
func TestScenarioS6Reversal(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 100, 100, 100, true, false, false, false),
		flatBar(100, 100, 100, 100, false, true, true, false),
		flatBar(105, 105, 105, 105, false, false, false, false),
	}}
	buf, err := Run(data, baseParams())
	require.NoError(t, err)

	assert.InDelta(t, 105.0, buf.ExitLongPrice[2], 1e-9)
	assert.InDelta(t, 105.0, buf.EntryShortPrice[2], 1e-9)
	assert.Equal(t, int8(-1), buf.FirstEntrySide[2])
	assert.Equal(t, ReversalLToS, FrameState(buf.FrameStateID[2]))
}

func TestNoSignalsHoldsInitialCapitalThroughout(t *testing.T) {
	n := 20
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = flatBar(100, 101, 99, 100, false, false, false, false)
	}
	buf, err := Run(&PreparedData{Bars: bars}, baseParams())
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.InDelta(t, 10000.0, buf.Balance[i], 1e-9)
		assert.InDelta(t, 10000.0, buf.Equity[i], 1e-9)
		assert.Equal(t, NoPosition, FrameState(buf.FrameStateID[i]))
	}
}

func TestRunIsDeterministic(t *testing.T) {
	data := &PreparedData{Bars: []Bar{
		flatBar(100, 101, 99, 100, true, false, false, false),
		flatBar(100, 110, 95, 108, false, false, false, false),
		flatBar(108, 120, 100, 115, false, true, false, false),
	}}
	p := baseParams()
	p.SLPct = &RiskParam{Value: 0.05}

	buf1, err := Run(data, p)
	require.NoError(t, err)
	buf2, err := Run(data, p)
	require.NoError(t, err)

	assert.Equal(t, buf1.Balance, buf2.Balance)
	assert.Equal(t, buf1.FrameStateID, buf2.FrameStateID)
}

// Invariants 1, 3, 8: balance/equity non-negative, drawdown in [0,1],
// cumulative fee monotone and additive. Peak equity is not an output
// column, so invariant 2 is not checked here.
func TestInvariantsHoldAcrossRandomishBars(t *testing.T) {
	bars := []Bar{
		flatBar(100, 101, 99, 100, true, false, false, false),
		flatBar(100, 103, 90, 95, false, false, false, false),
		flatBar(95, 140, 92, 130, false, true, false, false),
		flatBar(130, 131, 80, 85, false, false, true, false),
		flatBar(85, 90, 60, 65, false, false, false, true),
	}
	p := baseParams()
	p.SLPct = &RiskParam{Value: 0.2}
	p.TPPct = &RiskParam{Value: 0.1}
	buf, err := Run(&PreparedData{Bars: bars}, p)
	require.NoError(t, err)

	var prevPeak, prevFeeCum float64
	for i := 0; i < buf.Len(); i++ {
		assert.GreaterOrEqual(t, buf.Balance[i], 0.0)
		assert.GreaterOrEqual(t, buf.Equity[i], 0.0)
		assert.GreaterOrEqual(t, buf.CurrentDrawdown[i], 0.0)
		assert.LessOrEqual(t, buf.CurrentDrawdown[i], 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, buf.FeeCum[i], prevFeeCum)
			assert.InDelta(t, prevFeeCum+buf.Fee[i], buf.FeeCum[i], 1e-9)
		}
		prevPeak = math.Max(prevPeak, buf.Equity[i])
		prevFeeCum = buf.FeeCum[i]
	}
	_ = prevPeak
}

func TestFrameStateClassifierUnmatchedTupleIsInvalid(t *testing.T) {
	// A tuple with no table entry must classify as Invalid, proving
	// the classifier is total over its input space rather than
	// panicking or guessing.
	in := frameInputs{entryLong: true, exitLong: false, entryShort: true, exitShort: true, riskDirection: 1, firstEntrySide: 1}
	assert.Equal(t, Invalid, classifyFrameState(in))
}

package backtest

import "math"

// OutputBuffers are the preallocated, positionally-filled output
// columns for one backtest run: one row per input bar. Optional
// columns are allocated iff the corresponding risk kind is configured
// (see RiskKinds), matching the "no per-bar allocation on the hot
// path" resource rule in spec.md §5.
type OutputBuffers struct {
	Balance         []float64
	Equity          []float64
	TradePnLPct     []float64
	TotalReturnPct  []float64
	Fee             []float64
	FeeCum          []float64
	CurrentDrawdown []float64

	EntryLongPrice  []float64
	EntryShortPrice []float64
	ExitLongPrice   []float64
	ExitShortPrice  []float64

	RiskInBarDirection []int8
	FirstEntrySide     []int8
	FrameStateID       []uint8

	SLPctPriceLong, SLPctPriceShort   []float64
	TPPctPriceLong, TPPctPriceShort   []float64
	TSLPctPriceLong, TSLPctPriceShort []float64
	SLATRPriceLong, SLATRPriceShort   []float64
	TPATRPriceLong, TPATRPriceShort   []float64
	TSLATRPriceLong, TSLATRPriceShort []float64
	TSLPsarPriceLong, TSLPsarPriceShort []float64
	ATR []float64
}

// NewOutputBuffers preallocates every fixed column at length n and
// every optional column whose risk kind is configured in rk.
func NewOutputBuffers(n int, rk *RiskKinds, includeATR bool) *OutputBuffers {
	b := &OutputBuffers{
		Balance:            make([]float64, n),
		Equity:             make([]float64, n),
		TradePnLPct:        make([]float64, n),
		TotalReturnPct:     make([]float64, n),
		Fee:                make([]float64, n),
		FeeCum:             make([]float64, n),
		CurrentDrawdown:    make([]float64, n),
		EntryLongPrice:     make([]float64, n),
		EntryShortPrice:    make([]float64, n),
		ExitLongPrice:      make([]float64, n),
		ExitShortPrice:     make([]float64, n),
		RiskInBarDirection: make([]int8, n),
		FirstEntrySide:     make([]int8, n),
		FrameStateID:       make([]uint8, n),
	}

	if rk.Has(KindSLPct) {
		b.SLPctPriceLong, b.SLPctPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindTPPct) {
		b.TPPctPriceLong, b.TPPctPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindTSLPct) {
		b.TSLPctPriceLong, b.TSLPctPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindSLATR) {
		b.SLATRPriceLong, b.SLATRPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindTPATR) {
		b.TPATRPriceLong, b.TPATRPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindTSLATR) {
		b.TSLATRPriceLong, b.TSLATRPriceShort = make([]float64, n), make([]float64, n)
	}
	if rk.Has(KindTSLPsar) {
		b.TSLPsarPriceLong, b.TSLPsarPriceShort = make([]float64, n), make([]float64, n)
	}
	if includeATR {
		b.ATR = make([]float64, n)
	}

	return b
}

// Len returns the number of rows this buffer set was allocated for.
func (b *OutputBuffers) Len() int { return len(b.Balance) }

// writeFixed writes the always-present columns for row i.
func (b *OutputBuffers) writeFixed(i int, c CapitalState, a *Action, risk *RiskState, frame FrameState) {
	b.Balance[i] = c.Balance
	b.Equity[i] = c.Equity
	b.TradePnLPct[i] = c.TradePnLPct
	b.TotalReturnPct[i] = c.TotalReturnPct
	b.Fee[i] = c.Fee
	b.FeeCum[i] = c.FeeCum
	b.CurrentDrawdown[i] = c.CurrentDrawdown

	b.EntryLongPrice[i] = optOrNaN(a.EntryLongPrice)
	b.EntryShortPrice[i] = optOrNaN(a.EntryShortPrice)
	b.ExitLongPrice[i] = optOrNaN(a.ExitLongPrice)
	b.ExitShortPrice[i] = optOrNaN(a.ExitShortPrice)

	b.RiskInBarDirection[i] = risk.InBarDirection
	b.FirstEntrySide[i] = a.FirstEntrySide
	b.FrameStateID[i] = uint8(frame)
}

// writeOptional writes whichever optional risk-price columns were
// allocated for row i.
func (b *OutputBuffers) writeOptional(i int, risk *RiskState, atr float64) {
	if b.SLPctPriceLong != nil {
		b.SLPctPriceLong[i] = optOrNaN(risk.Long.slPctPrice)
		b.SLPctPriceShort[i] = optOrNaN(risk.Short.slPctPrice)
	}
	if b.TPPctPriceLong != nil {
		b.TPPctPriceLong[i] = optOrNaN(risk.Long.tpPctPrice)
		b.TPPctPriceShort[i] = optOrNaN(risk.Short.tpPctPrice)
	}
	if b.TSLPctPriceLong != nil {
		b.TSLPctPriceLong[i] = optOrNaN(risk.Long.tslPctPrice)
		b.TSLPctPriceShort[i] = optOrNaN(risk.Short.tslPctPrice)
	}
	if b.SLATRPriceLong != nil {
		b.SLATRPriceLong[i] = optOrNaN(risk.Long.slATRPrice)
		b.SLATRPriceShort[i] = optOrNaN(risk.Short.slATRPrice)
	}
	if b.TPATRPriceLong != nil {
		b.TPATRPriceLong[i] = optOrNaN(risk.Long.tpATRPrice)
		b.TPATRPriceShort[i] = optOrNaN(risk.Short.tpATRPrice)
	}
	if b.TSLATRPriceLong != nil {
		b.TSLATRPriceLong[i] = optOrNaN(risk.Long.tslATRPrice)
		b.TSLATRPriceShort[i] = optOrNaN(risk.Short.tslATRPrice)
	}
	if b.TSLPsarPriceLong != nil {
		b.TSLPsarPriceLong[i] = optOrNaN(risk.Long.tslPsarPrice)
		b.TSLPsarPriceShort[i] = optOrNaN(risk.Short.tslPsarPrice)
	}
	if b.ATR != nil {
		b.ATR[i] = atr
	}
}

func optOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

package backtest

import "math"

// initEntryWithSafetyCheck computes every configured risk threshold
// from the signal bar (prevBar, i-1) and verifies the current bar's
// open has not already crossed it unfavorably before committing an
// entry. It checks SL-PCT, SL-ATR, TP-PCT, TP-ATR, TSL-PCT, TSL-ATR,
// then TSL-PSAR in that order, aborting on the first violation. Each
// passing check immediately stores its computed price into risk (and,
// for TSL rules, the ratchet anchor) so the risk-trigger step later
// in the same bar reuses the already-computed numbers rather than
// recomputing them.
func initEntryWithSafetyCheck(p *ParamBundle, rk *RiskKinds, dir Direction, prevPrev, prev Bar, open float64, risk *sideRisk) bool {
	if rk.Has(KindSLPct) {
		anchor := getSLAnchor(prev.Close, prev.Low, prev.High, p.SLAnchorMode, dir)
		price := calcSLPctPrice(anchor, p.SLPct.Value, dir)
		if !checkGapAndStore(open, dir, true, price) {
			return false
		}
		risk.slPctPrice = f64ptr(price)
	}

	if rk.Has(KindSLATR) && !math.IsNaN(prev.ATR) {
		anchor := getSLAnchor(prev.Close, prev.Low, prev.High, p.SLAnchorMode, dir)
		price := calcSLATRPrice(anchor, prev.ATR, p.SLATR.Value, dir)
		if !checkGapAndStore(open, dir, true, price) {
			return false
		}
		risk.slATRPrice = f64ptr(price)
	}

	if rk.Has(KindTPPct) {
		anchor := getTPAnchor(prev.Close, prev.Low, prev.High, p.TPAnchorMode, dir)
		price := calcTPPctPrice(anchor, p.TPPct.Value, dir)
		if !checkGapAndStore(open, dir, false, price) {
			return false
		}
		risk.tpPctPrice = f64ptr(price)
	}

	if rk.Has(KindTPATR) && !math.IsNaN(prev.ATR) {
		anchor := getTPAnchor(prev.Close, prev.Low, prev.High, p.TPAnchorMode, dir)
		price := calcTPATRPrice(anchor, prev.ATR, p.TPATR.Value, dir)
		if !checkGapAndStore(open, dir, false, price) {
			return false
		}
		risk.tpATRPrice = f64ptr(price)
	}

	if rk.Has(KindTSLPct) {
		anchor := getTSLAnchor(prev.Close, prev.Low, prev.High, p.TSLAnchorMode, dir)
		price := calcTSLPctPrice(anchor, p.TSLPct.Value, dir)
		if !checkGapAndStore(open, dir, true, price) {
			return false
		}
		risk.tslPctPrice = f64ptr(price)
		risk.anchorSinceEntry = f64ptr(anchor)
	}

	if rk.Has(KindTSLATR) && !math.IsNaN(prev.ATR) {
		anchor := getTSLAnchor(prev.Close, prev.Low, prev.High, p.TSLAnchorMode, dir)
		price := calcTSLATRPrice(anchor, prev.ATR, p.TSLATR.Value, dir)
		if !checkGapAndStore(open, dir, true, price) {
			return false
		}
		risk.tslATRPrice = f64ptr(price)
		if risk.anchorSinceEntry == nil {
			risk.anchorSinceEntry = f64ptr(anchor)
		}
	}

	if rk.Has(KindTSLPsar) {
		state := psarInit(prevPrev.High, prevPrev.Low, prevPrev.Close, dir, p.TSLPsarAF0.Value)
		state, price := psarStep(state, prev.High, prev.Low, p.TSLPsarAFStep.Value, p.TSLPsarMaxAF.Value)

		safe := (dir == Long && open >= price) || (dir == Short && open <= price)
		if !safe {
			return false
		}
		risk.tslPsarPrice = f64ptr(price)
		risk.tslPsarState = &state
	}

	return true
}

// checkGapAndStore implements the one safety predicate shared by
// every risk kind: for a stop-style rule (SL/TSL) the open must not
// have already passed the threshold against the position; for a
// take-profit rule the open must not have already exceeded it either
// — handing us the profit for free is treated as an unsafe, rejected
// gap, not a free win.
func checkGapAndStore(open float64, dir Direction, isStopLoss bool, price float64) bool {
	switch {
	case dir == Long && isStopLoss:
		return open >= price
	case dir == Long && !isStopLoss:
		return open <= price
	case dir == Short && isStopLoss:
		return open <= price
	default: // Short, take-profit
		return open >= price
	}
}

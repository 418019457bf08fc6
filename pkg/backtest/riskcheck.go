package backtest

import "math"

// riskCheckResult is what checkRiskExit decided for one side this bar.
type riskCheckResult struct {
	exitPrice float64
	inBar     bool
}

// checkRiskExit re-evaluates every configured risk kind for an open
// position on the current bar, ratchets the TSL anchor/price, and
// returns the tie-broken in-bar exit price (if any). Next-bar
// triggers are recorded directly on risk.exitNextBar for the caller
// to consume at the top of the following bar.
func checkRiskExit(p *ParamBundle, rk *RiskKinds, dir Direction, entryPrice float64, cur Bar, risk *sideRisk) *riskCheckResult {
	slProbeInBar, tpProbeInBar := switchPricesInBar(cur.Low, cur.High, dir)
	slProbeNext, tpProbeNext := switchPricesNextBar(cur.Low, cur.High, cur.Close, p.UseExtremaForExit, dir)

	var inBarTriggered []float64
	nextBarTriggered := false

	checkOne := func(configured bool, price *float64, exitInBar bool, probeInBar, probeNext float64, triggerFn func(p, t float64, d Direction) bool) {
		if !configured || price == nil {
			return
		}
		if exitInBar {
			if triggerFn(probeInBar, *price, dir) {
				inBarTriggered = append(inBarTriggered, *price)
			}
			return
		}
		if triggerFn(probeNext, *price, dir) {
			nextBarTriggered = true
		}
	}

	checkOne(rk.Has(KindSLPct), risk.slPctPrice, p.SLExitInBar, slProbeInBar, slProbeNext, isSLTriggered)
	checkOne(rk.Has(KindSLATR), risk.slATRPrice, p.SLExitInBar, slProbeInBar, slProbeNext, isSLTriggered)
	checkOne(rk.Has(KindTPPct), risk.tpPctPrice, p.TPExitInBar, tpProbeInBar, tpProbeNext, isTPTriggered)
	checkOne(rk.Has(KindTPATR), risk.tpATRPrice, p.TPExitInBar, tpProbeInBar, tpProbeNext, isTPTriggered)

	// TSL rules ratchet their own anchor/price every bar, and always
	// use next-bar settlement semantics regardless of SLExitInBar /
	// TPExitInBar.
	if rk.Has(KindTSLPct) && risk.anchorSinceEntry != nil {
		ratchetTSLPct(p, dir, cur, risk)
		if isTSLTriggered(slProbeNext, *risk.tslPctPrice, dir) {
			nextBarTriggered = true
		}
	}
	if rk.Has(KindTSLATR) && risk.anchorSinceEntry != nil && !math.IsNaN(cur.ATR) {
		ratchetTSLATR(p, dir, cur, risk)
		if isTSLTriggered(slProbeNext, *risk.tslATRPrice, dir) {
			nextBarTriggered = true
		}
	}
	if rk.Has(KindTSLPsar) && risk.tslPsarState != nil {
		ratchetTSLPsar(p, dir, cur, risk)
		if isTSLTriggered(slProbeNext, *risk.tslPsarPrice, dir) {
			nextBarTriggered = true
		}
	}

	risk.exitNextBar = nextBarTriggered

	if price, ok := mostConservative(dir, inBarTriggered); ok {
		risk.inBarTriggered = true
		return &riskCheckResult{exitPrice: price, inBar: true}
	}
	return nil
}

func ratchetTSLPct(p *ParamBundle, dir Direction, cur Bar, risk *sideRisk) {
	candidate := getTSLAnchor(cur.Close, cur.Low, cur.High, p.TSLAnchorMode, dir)
	newAnchor, _ := updateAnchorSinceEntry(candidate, *risk.anchorSinceEntry, dir)
	risk.anchorSinceEntry = f64ptr(newAnchor)
	recomputed := calcTSLPctPrice(newAnchor, p.TSLPct.Value, dir)
	risk.tslPctPrice = updatePriceOneDirection(risk.tslPctPrice, recomputed, dir)
}

func ratchetTSLATR(p *ParamBundle, dir Direction, cur Bar, risk *sideRisk) {
	candidate := getTSLAnchor(cur.Close, cur.Low, cur.High, p.TSLAnchorMode, dir)
	newAnchor, _ := updateAnchorSinceEntry(candidate, *risk.anchorSinceEntry, dir)
	risk.anchorSinceEntry = f64ptr(newAnchor)
	recomputed := calcTSLATRPrice(newAnchor, cur.ATR, p.TSLATR.Value, dir)
	risk.tslATRPrice = updatePriceOneDirection(risk.tslATRPrice, recomputed, dir)
}

// ratchetTSLPsar advances the forced-direction PSAR recurrence one
// bar; PsarState itself remembers the previous bar's extremes for
// clamping (see psar.go).
func ratchetTSLPsar(p *ParamBundle, dir Direction, cur Bar, risk *sideRisk) {
	newState, price := psarStep(*risk.tslPsarState, cur.High, cur.Low, p.TSLPsarAFStep.Value, p.TSLPsarMaxAF.Value)
	risk.tslPsarPrice = updatePriceOneDirection(risk.tslPsarPrice, price, dir)
	risk.tslPsarState = &newState
}

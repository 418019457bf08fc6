package backtest

// resolver drives the two-stage position resolution described in
// spec.md §4.2: strategy signals from the previous bar execute at
// this bar's open (subject to gap-safety on entry), then this bar's
// risk rules are evaluated against the bar's own high/low/close.
type resolver struct {
	params *ParamBundle
	kinds  *RiskKinds

	action Action
	risk   RiskState
}

func newResolver(p *ParamBundle, rk *RiskKinds) *resolver {
	return &resolver{params: p, kinds: rk}
}

// resolveResult is everything the bar loop needs after one bar's
// resolution: the exits to settle, the unrealized mark for any bar
// still holding a position, and the classifier inputs.
type resolveResult struct {
	exits            resolvedExits
	unrealized       float64
	frame            frameInputs
}

// step advances the resolver by one bar. prevPrev/prev/cur are bars
// i-2, i-1, i; capitalExhausted reflects the capital calculator's
// state going into this bar.
func (r *resolver) step(prevPrev, prev, cur Bar, capitalExhausted bool) resolveResult {
	a := &r.action

	// 1. Side-aware reset: an exit recorded last bar clears that
	// side's entry/exit slots and risk state before anything else
	// happens this bar.
	if a.ExitLongPrice != nil {
		a.EntryLongPrice = nil
		a.ExitLongPrice = nil
		r.risk.resetLong()
	}
	if a.ExitShortPrice != nil {
		a.EntryShortPrice = nil
		a.ExitShortPrice = nil
		r.risk.resetShort()
	}

	gapBlockedLong, gapBlockedShort := false, false

	if capitalExhausted {
		return resolveResult{frame: frameInputs{capitalExhausted: true}}
	}

	// 2.1 Strategy exit at open: a held position exits at this bar's
	// open if the signal bar asked for it, or a next-bar risk flag is
	// pending, and no in-bar risk trigger is already active for it.
	if a.hasLongPosition() && (prev.ExitLong || r.risk.Long.exitNextBar) && !r.risk.Long.inBarTriggered {
		a.ExitLongPrice = f64ptr(cur.Open)
	}
	if a.hasShortPosition() && (prev.ExitShort || r.risk.Short.exitNextBar) && !r.risk.Short.inBarTriggered {
		a.ExitShortPrice = f64ptr(cur.Open)
	}

	// 2.2 Strategy entry at open, gap-safe; long is attempted before
	// short, and if both would otherwise succeed the second is
	// rejected (a bar only ever opens one new side).
	a.FirstEntrySide = 0

	canEntryLong := !a.hasLongPosition() || a.ExitShortPrice != nil
	if canEntryLong && prev.EnterLong && a.FirstEntrySide == 0 {
		if initEntryWithSafetyCheck(r.params, r.kinds, Long, prevPrev, prev, cur.Open, &r.risk.Long) {
			a.EntryLongPrice = f64ptr(cur.Open)
			a.FirstEntrySide = 1
		} else {
			gapBlockedLong = true
			r.risk.resetLong()
		}
	}

	canEntryShort := !a.hasShortPosition() || a.ExitLongPrice != nil
	if canEntryShort && prev.EnterShort && a.FirstEntrySide == 0 {
		if initEntryWithSafetyCheck(r.params, r.kinds, Short, prevPrev, prev, cur.Open, &r.risk.Short) {
			a.EntryShortPrice = f64ptr(cur.Open)
			a.FirstEntrySide = -1
		} else {
			gapBlockedShort = true
			r.risk.resetShort()
		}
	}

	// 3. Risk trigger evaluation for whatever is held after step 2.
	r.risk.resetInBarFlags()
	if a.hasLongPosition() {
		if res := checkRiskExit(r.params, r.kinds, Long, *a.EntryLongPrice, cur, &r.risk.Long); res != nil && res.inBar {
			a.ExitLongPrice = f64ptr(res.exitPrice)
			r.risk.InBarDirection = 1
		}
	}
	if a.hasShortPosition() {
		if res := checkRiskExit(r.params, r.kinds, Short, *a.EntryShortPrice, cur, &r.risk.Short); res != nil && res.inBar {
			a.ExitShortPrice = f64ptr(res.exitPrice)
			r.risk.InBarDirection = -1
		}
	}

	return r.buildResult(cur.Close, gapBlockedLong || gapBlockedShort)
}

// buildResult assembles the capital-settlement list and classifier
// tuple from the action/risk state this bar ended with.
func (r *resolver) buildResult(close float64, gapBlocked bool) resolveResult {
	a := &r.action
	var exits []exitSettlement
	unrealized := 0.0

	if a.ExitLongPrice != nil {
		exits = append(exits, exitSettlement{
			dir: Long, entryPrice: *a.EntryLongPrice, exitPrice: *a.ExitLongPrice,
			feeFixed: r.params.FeeFixed, feePct: r.params.FeePct,
		})
	} else if a.hasLongPosition() {
		unrealized += markUnrealized(Long, close, *a.EntryLongPrice)
	}

	if a.ExitShortPrice != nil {
		exits = append(exits, exitSettlement{
			dir: Short, entryPrice: *a.EntryShortPrice, exitPrice: *a.ExitShortPrice,
			feeFixed: r.params.FeeFixed, feePct: r.params.FeePct,
		})
	} else if a.hasShortPosition() {
		unrealized += markUnrealized(Short, close, *a.EntryShortPrice)
	}

	// With two exits, the side held into the bar settles first; when a
	// long was entered this bar, that side is the short.
	if len(exits) == 2 && a.FirstEntrySide == 1 {
		exits[0], exits[1] = exits[1], exits[0]
	}

	in := frameInputs{
		entryLong:  a.EntryLongPrice != nil,
		exitLong:   a.ExitLongPrice != nil,
		entryShort: a.EntryShortPrice != nil,
		exitShort:  a.ExitShortPrice != nil,
		riskDirection: r.risk.InBarDirection,
		firstEntrySide: a.FirstEntrySide,
		gapBlocked: gapBlocked,
	}

	return resolveResult{exits: resolvedExits{exits: exits}, unrealized: unrealized, frame: in}
}

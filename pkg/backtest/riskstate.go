package backtest

// sideRisk holds the per-side risk-exit slots that are only
// meaningful while a position of that side is open. A nil pointer
// means "this rule is not configured" or "not yet computed this
// position" — both are collapsed to NaN when written to an output
// buffer (see buffers.go).
type sideRisk struct {
	slPctPrice  *float64
	slATRPrice  *float64
	tpPctPrice  *float64
	tpATRPrice  *float64
	tslPctPrice *float64
	tslATRPrice *float64

	tslPsarPrice *float64
	tslPsarState *PsarState

	// anchorSinceEntry is the TSL ratchet anchor. It is shared by
	// TSL-PCT and TSL-ATR (both ratchet off the same running extreme)
	// and lives for the duration of the position, cleared on exit.
	anchorSinceEntry *float64

	// exitNextBar is set when a next-bar-mode rule (SL/TP configured
	// with ExitInBar=false, or any TSL rule, which is always
	// next-bar) triggers this bar; it is consumed at the top of the
	// following bar's strategy-exit step.
	exitNextBar bool

	// inBarTriggered is set when an in-bar-mode rule fires this bar.
	// It is cleared along with the rest of the slot on the side-aware
	// reset the bar after the resulting exit, so by the time it could
	// be read again the position has already closed; kept for parity
	// with the original's defensive guard at the strategy-exit step.
	inBarTriggered bool
}

func (s *sideRisk) reset() {
	*s = sideRisk{}
}

// RiskState carries the long and short risk-exit slots plus the
// per-bar in-bar-trigger direction. It is created implicitly (zero
// value) and populated on successful entry; resetLong/resetShort
// clear a side's slots the bar after that side exits.
type RiskState struct {
	Long  sideRisk
	Short sideRisk

	// InBarDirection is re-derived every bar: +1 if a long in-bar risk
	// trigger fired this bar, -1 for short, 0 otherwise.
	InBarDirection int8
}

func (rs *RiskState) resetLong()  { rs.Long.reset() }
func (rs *RiskState) resetShort() { rs.Short.reset() }

func (rs *RiskState) resetInBarFlags() {
	rs.InBarDirection = 0
}

func (rs *RiskState) side(d Direction) *sideRisk {
	if d == Long {
		return &rs.Long
	}
	return &rs.Short
}

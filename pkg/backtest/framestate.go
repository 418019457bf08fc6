package backtest

// FrameState is the per-bar categorical summary of what the resolver
// decided, derived by a pure function of the bar's entry/exit flags,
// the in-bar risk direction, the first-entry marker, and whether the
// bar was gap-blocked. It exists purely for observability: nothing in
// the resolver or capital calculator branches on it.
type FrameState uint8

const (
	NoPosition FrameState = iota
	HoldLong
	HoldLongFirst
	HoldShort
	HoldShortFirst
	ExitLongSignal
	ExitLongRisk
	ExitLongRiskFirst
	ExitShortSignal
	ExitShortRisk
	ExitShortRiskFirst
	ReversalLToS
	ReversalSToL
	ReversalToLRisk
	ReversalToSRisk
	GapBlocked
	CapitalExhausted
	Invalid FrameState = 255
)

func (f FrameState) String() string {
	switch f {
	case NoPosition:
		return "no_position"
	case HoldLong:
		return "hold_long"
	case HoldLongFirst:
		return "hold_long_first"
	case HoldShort:
		return "hold_short"
	case HoldShortFirst:
		return "hold_short_first"
	case ExitLongSignal:
		return "exit_long_signal"
	case ExitLongRisk:
		return "exit_long_risk"
	case ExitLongRiskFirst:
		return "exit_long_risk_first"
	case ExitShortSignal:
		return "exit_short_signal"
	case ExitShortRisk:
		return "exit_short_risk"
	case ExitShortRiskFirst:
		return "exit_short_risk_first"
	case ReversalLToS:
		return "reversal_l_to_s"
	case ReversalSToL:
		return "reversal_s_to_l"
	case ReversalToLRisk:
		return "reversal_to_l_risk"
	case ReversalToSRisk:
		return "reversal_to_s_risk"
	case GapBlocked:
		return "gap_blocked"
	case CapitalExhausted:
		return "capital_exhausted"
	default:
		return "invalid_state"
	}
}

// frameInputs is the tuple the classifier is a pure function of.
type frameInputs struct {
	entryLong, exitLong   bool
	entryShort, exitShort bool
	riskDirection         int8 // -1, 0, +1
	firstEntrySide        int8 // -1, 0, +1
	gapBlocked            bool
	capitalExhausted      bool
}

// classifyFrameState maps the 17-variant table from spec.md §4.7 (plus
// the Invalid sentinel) onto one bar's resolved flags. Any tuple not
// in the table is a resolver bug, not a legitimate "no match" case.
func classifyFrameState(in frameInputs) FrameState {
	if in.gapBlocked {
		return GapBlocked
	}
	if in.capitalExhausted {
		return CapitalExhausted
	}

	el, xl, es, xs := in.entryLong, in.exitLong, in.entryShort, in.exitShort
	risk, first := in.riskDirection, in.firstEntrySide

	switch {
	case !el && !xl && !es && !xs && risk == 0 && first == 0:
		return NoPosition
	case el && !xl && !es && !xs && risk == 0 && first == 0:
		return HoldLong
	case el && !xl && !es && !xs && risk == 0 && first == 1:
		return HoldLongFirst
	case !el && !xl && es && !xs && risk == 0 && first == 0:
		return HoldShort
	case !el && !xl && es && !xs && risk == 0 && first == -1:
		return HoldShortFirst
	case el && xl && !es && !xs && risk == 0 && first == 0:
		return ExitLongSignal
	case el && xl && !es && !xs && risk == 1 && first == 0:
		return ExitLongRisk
	case el && xl && !es && !xs && risk == 1 && first == 1:
		return ExitLongRiskFirst
	case !el && !xl && es && xs && risk == 0 && first == 0:
		return ExitShortSignal
	case !el && !xl && es && xs && risk == -1 && first == 0:
		return ExitShortRisk
	case !el && !xl && es && xs && risk == -1 && first == -1:
		return ExitShortRiskFirst
	case el && xl && es && !xs && risk == 0 && first == -1:
		return ReversalLToS
	case el && !xl && es && xs && risk == 0 && first == 1:
		return ReversalSToL
	case el && xl && es && xs && risk == 1 && first == 1:
		return ReversalToLRisk
	case el && xl && es && xs && risk == -1 && first == -1:
		return ReversalToSRisk
	default:
		return Invalid
	}
}

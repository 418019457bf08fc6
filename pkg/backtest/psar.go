package backtest

import "math"

// PsarState is the per-position sub-state the Parabolic SAR trailing
// stop carries across bars: which side it currently favors, the
// running SAR value, the extreme point, and the acceleration factor.
type PsarState struct {
	IsLong     bool
	CurrentSAR float64
	CurrentEP  float64
	CurrentAF  float64

	// lastHigh/lastLow remember the most recently processed bar's
	// extremes so the next step can clamp its candidate SAR against
	// them, mirroring the prior-bar clamp used during initialization.
	lastHigh float64
	lastLow  float64
}

// psarInit seeds a PsarState from the bar preceding the first step
// (at entry, bar i-2; the first step then consumes the signal bar
// i-1). Used as a per-position trailing stop, the
// side is forced by the entry direction rather than auto-detected.
func psarInit(highPrev, lowPrev, closePrev float64, dir Direction, af0 float64) PsarState {
	isLong := dir == Long
	ep := lowPrev
	if isLong {
		ep = highPrev
	}
	return PsarState{
		IsLong:     isLong,
		CurrentSAR: closePrev,
		CurrentEP:  ep,
		CurrentAF:  af0,
		lastHigh:   highPrev,
		lastLow:    lowPrev,
	}
}

// psarStep advances PSAR by one bar: compute the candidate SAR, clamp
// it against the previous bar's extreme in the opposite direction,
// then extend the extreme point and accelerate if the current bar
// made a new one. Forced-direction mode disables reversal detection
// entirely — the stop only ever ratchets in its own favor, and a
// breach is reported through the ordinary risk-trigger comparison
// against the returned price, not by flipping IsLong.
func psarStep(state PsarState, curHigh, curLow float64, afStep, maxAF float64) (PsarState, float64) {
	candidate := candidateSAR(state)

	if state.IsLong {
		state.CurrentSAR = math.Min(candidate, state.lastLow)
		if curHigh > state.CurrentEP {
			state.CurrentEP = curHigh
			state.CurrentAF = math.Min(state.CurrentAF+afStep, maxAF)
		}
	} else {
		state.CurrentSAR = math.Max(candidate, state.lastHigh)
		if curLow < state.CurrentEP {
			state.CurrentEP = curLow
			state.CurrentAF = math.Min(state.CurrentAF+afStep, maxAF)
		}
	}

	state.lastHigh, state.lastLow = curHigh, curLow
	return state, state.CurrentSAR
}

func candidateSAR(state PsarState) float64 {
	if state.IsLong {
		return state.CurrentSAR + state.CurrentAF*(state.CurrentEP-state.CurrentSAR)
	}
	return state.CurrentSAR - state.CurrentAF*(state.CurrentSAR-state.CurrentEP)
}

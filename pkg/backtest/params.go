package backtest

// RiskParam is one optimizable risk threshold: a percentage, an ATR
// multiplier, or a PSAR coefficient. Min/Max/Step/LogScale describe
// the search range an optimizer may sweep; Value is what a single
// backtest run actually uses.
type RiskParam struct {
	Value    float64
	Min      float64
	Max      float64
	Step     float64
	LogScale bool
	Optimize bool
}

// ParamBundle is everything one backtest run needs beyond the bars
// themselves: capital/fee terms and up to seven optional risk-exit
// rules. A nil *RiskParam means the rule is disabled for this run.
type ParamBundle struct {
	InitialCapital float64
	FeeFixed       float64
	FeePct         float64

	SLPct *RiskParam
	TPPct *RiskParam
	TSLPct *RiskParam

	SLATR  *RiskParam
	TPATR  *RiskParam
	TSLATR *RiskParam

	ATRPeriod int

	TSLPsarAF0    *RiskParam
	TSLPsarAFStep *RiskParam
	TSLPsarMaxAF  *RiskParam

	// SLExitInBar / TPExitInBar select in-bar vs next-bar settlement
	// per rule family; TSL always settles next-bar regardless of
	// these flags.
	SLExitInBar bool
	TPExitInBar bool

	// UseExtremaForExit selects high/low probing in next-bar mode;
	// when false, next-bar probing uses close for both SL and TP.
	UseExtremaForExit bool

	SLAnchorMode  bool
	TPAnchorMode  bool
	TSLAnchorMode bool
}

// Validate enforces the input-validation error kind: fail fast, before
// the bar loop ever runs, rather than let a degenerate parameter
// surface mid-loop.
func (p *ParamBundle) Validate() error {
	if p.InitialCapital <= 0 {
		return ErrNonPositiveCapital
	}
	if p.FeeFixed < 0 || p.FeePct < 0 {
		return ErrNegativeFee
	}
	for _, rp := range []*RiskParam{p.SLPct, p.TPPct, p.TSLPct, p.SLATR, p.TPATR, p.TSLATR,
		p.TSLPsarAF0, p.TSLPsarAFStep, p.TSLPsarMaxAF} {
		if rp != nil && rp.Value <= 0 {
			return ErrMissingRiskValue
		}
	}
	return nil
}

// usesATR reports whether any configured rule needs the ATR column.
func (p *ParamBundle) usesATR() bool {
	return p.SLATR != nil || p.TPATR != nil || p.TSLATR != nil
}

// usesPSAR reports whether the PSAR trailing stop is configured.
func (p *ParamBundle) usesPSAR() bool {
	return p.TSLPsarAF0 != nil && p.TSLPsarAFStep != nil && p.TSLPsarMaxAF != nil
}

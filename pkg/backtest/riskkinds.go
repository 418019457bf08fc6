package backtest

import "github.com/StudioSol/set"

// Risk-kind names, used as the members of a RiskKinds set.
const (
	KindSLPct  = "sl_pct"
	KindTPPct  = "tp_pct"
	KindTSLPct = "tsl_pct"
	KindSLATR  = "sl_atr"
	KindTPATR  = "tp_atr"
	KindTSLATR = "tsl_atr"
	KindTSLPsar = "tsl_psar"
)

// RiskKinds is the set of risk-exit kinds configured for one run,
// derived once from a ParamBundle. Buffer allocation, the gap-safety
// routine and the risk check query it with Has in their own fixed
// order. Ordered returns the kinds in insertion order: SL, TP, TSL,
// the ATR variants, then PSAR.
type RiskKinds struct {
	set *set.LinkedHashSetString
}

// NewRiskKinds inspects a ParamBundle and records which of the seven
// risk kinds are active.
func NewRiskKinds(p *ParamBundle) *RiskKinds {
	rk := &RiskKinds{set: set.NewLinkedHashSetString()}
	if p.SLPct != nil {
		rk.set.Add(KindSLPct)
	}
	if p.TPPct != nil {
		rk.set.Add(KindTPPct)
	}
	if p.TSLPct != nil {
		rk.set.Add(KindTSLPct)
	}
	if p.SLATR != nil {
		rk.set.Add(KindSLATR)
	}
	if p.TPATR != nil {
		rk.set.Add(KindTPATR)
	}
	if p.TSLATR != nil {
		rk.set.Add(KindTSLATR)
	}
	if p.usesPSAR() {
		rk.set.Add(KindTSLPsar)
	}
	return rk
}

// Has reports whether the given risk kind is configured.
func (rk *RiskKinds) Has(kind string) bool { return rk.set.Contains(kind) }

// Ordered returns the configured kinds in stable insertion order.
func (rk *RiskKinds) Ordered() []string {
	out := make([]string, 0, rk.set.Size())
	for _, v := range rk.set.Values() {
		out = append(out, v)
	}
	return out
}

// Empty reports whether no risk kind is configured at all.
func (rk *RiskKinds) Empty() bool { return rk.set.Size() == 0 }

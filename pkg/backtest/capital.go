package backtest

import "math"

// CapitalState is the full-balance single-position capital account:
// one balance, marked to market every bar, settled on every exit.
type CapitalState struct {
	InitialCapital float64
	Balance        float64
	Equity         float64
	TradePnLPct    float64
	TotalReturnPct float64
	Fee            float64
	FeeCum         float64
	PeakEquity     float64
	CurrentDrawdown float64
}

// NewCapitalState seeds balance, equity, and peak-equity at the
// configured initial capital.
func NewCapitalState(initialCapital float64) CapitalState {
	return CapitalState{
		InitialCapital: initialCapital,
		Balance:        initialCapital,
		Equity:         initialCapital,
		PeakEquity:     initialCapital,
	}
}

// settleExit applies the realized-PnL formula for one exit: fee is
// fee_fixed once per round trip plus half of fee_pct on the entry
// notional and half on the realized notional.
func (c *CapitalState) settleExit(dir Direction, entryPrice, exitPrice, feeFixed, feePct float64) {
	initialBalance := c.Balance
	pnlRawPct := dir.Sign() * (exitPrice - entryPrice) / entryPrice
	realizedValue := initialBalance * (1.0 + pnlRawPct)
	feeAmount := feeFixed + initialBalance*feePct/2.0 + realizedValue*feePct/2.0
	newBalance := realizedValue - feeAmount

	c.TradePnLPct = newBalance/initialBalance - 1.0
	c.Balance = newBalance
	c.Fee += feeAmount
	c.FeeCum += feeAmount
}

// markUnrealized computes the unrealized PnL fraction for a bar where
// a position remains open with no exit, used by settle to mark
// Equity to market.
func markUnrealized(dir Direction, close, entryPrice float64) float64 {
	return dir.Sign() * (close - entryPrice) / entryPrice
}

// settle is the per-bar capital update invoked once resolver has
// decided the bar's exits and held positions. fee is reset to 0 at
// the start of every bar and only becomes non-zero when an exit
// settles this bar — a bar with no exit reports Fee=0 even though
// FeeCum carries forward.
func (c *CapitalState) settle(r resolvedExits, unrealized float64) {
	c.Fee = 0

	for _, e := range r.exits {
		c.settleExit(e.dir, e.entryPrice, e.exitPrice, e.feeFixed, e.feePct)
	}

	c.Equity = c.Balance * (1.0 + unrealized)
	c.Balance = math.Max(c.Balance, 0)
	c.Equity = math.Max(c.Equity, 0)
	c.PeakEquity = math.Max(c.PeakEquity, c.Equity)

	if c.PeakEquity > 0 {
		c.CurrentDrawdown = 1.0 - c.Equity/c.PeakEquity
	} else {
		c.CurrentDrawdown = 0
	}

	c.TotalReturnPct = c.Equity/c.InitialCapital - 1.0
}

// exhausted reports the terminal CapitalExhausted condition: once
// balance reaches exactly zero, no further entry may be taken.
func (c *CapitalState) exhausted() bool {
	return c.Balance <= 0
}

type exitSettlement struct {
	dir        Direction
	entryPrice float64
	exitPrice  float64
	feeFixed   float64
	feePct     float64
}

// resolvedExits carries zero, one, or two (on a reversal bar) exits
// settled for the current bar, applied in order: the side held into
// the bar first, then the side entered on this bar. Entries never
// settle capital themselves; only exits do.
type resolvedExits struct {
	exits []exitSettlement
}

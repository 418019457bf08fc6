package backtest

import "math"

// Risk-price formulas, single implementation parameterized by
// direction sign (see direction.go) rather than duplicated per side.

func calcSLPctPrice(anchor, slPct float64, dir Direction) float64 {
	return anchor * (1.0 - dir.Sign()*slPct)
}

func calcSLATRPrice(anchor, atr, k float64, dir Direction) float64 {
	return anchor - dir.Sign()*atr*k
}

func calcTPPctPrice(anchor, tpPct float64, dir Direction) float64 {
	return anchor * (1.0 + dir.Sign()*tpPct)
}

func calcTPATRPrice(anchor, atr, k float64, dir Direction) float64 {
	return anchor + dir.Sign()*atr*k
}

func calcTSLPctPrice(anchorSinceEntry, tslPct float64, dir Direction) float64 {
	return anchorSinceEntry * (1.0 - dir.Sign()*tslPct)
}

func calcTSLATRPrice(anchorSinceEntry, atr, k float64, dir Direction) float64 {
	return anchorSinceEntry - dir.Sign()*atr*k
}

// getSLAnchor returns the SL/TSL-style anchor: close when anchor_mode
// is false, else the adverse extreme (low for long, high for short).
func getSLAnchor(close, low, high float64, anchorMode bool, dir Direction) float64 {
	if !anchorMode {
		return close
	}
	if dir == Long {
		return low
	}
	return high
}

// getTPAnchor returns the TP-style anchor: close when anchor_mode is
// false, else the favorable extreme (high for long, low for short).
func getTPAnchor(close, low, high float64, anchorMode bool, dir Direction) float64 {
	if !anchorMode {
		return close
	}
	if dir == Long {
		return high
	}
	return low
}

// getTSLAnchor has the same shape as getSLAnchor: close when
// anchor_mode is false, else the adverse extreme (low for long, high
// for short).
func getTSLAnchor(close, low, high float64, anchorMode bool, dir Direction) float64 {
	return getSLAnchor(close, low, high, anchorMode, dir)
}

// updateAnchorSinceEntry ratchets the TSL anchor monotonically: a long
// anchor only ever rises, a short anchor only ever falls. Returns the
// possibly-unchanged anchor and whether it moved this bar.
func updateAnchorSinceEntry(current, prev float64, dir Direction) (float64, bool) {
	if dir == Long {
		if current > prev {
			return current, true
		}
		return prev, false
	}
	if current < prev {
		return current, true
	}
	return prev, false
}

// isSLTriggered, isTPTriggered, isTSLTriggered use inclusive
// comparisons: a threshold touched exactly is treated as triggered,
// per spec.md §4.3's numeric-edge-case rule.
func isSLTriggered(price, threshold float64, dir Direction) bool {
	return price*dir.Sign() <= threshold*dir.Sign()
}

func isTPTriggered(price, threshold float64, dir Direction) bool {
	return price*dir.Sign() >= threshold*dir.Sign()
}

func isTSLTriggered(price, threshold float64, dir Direction) bool {
	return isSLTriggered(price, threshold, dir)
}

// updatePriceOneDirection ratchets a single already-computed risk
// price (as opposed to the anchor it derives from): it never retreats
// once set.
func updatePriceOneDirection(old *float64, newPrice float64, dir Direction) *float64 {
	if old == nil {
		return f64ptr(newPrice)
	}
	if dir == Long && newPrice > *old {
		return f64ptr(newPrice)
	}
	if dir == Short && newPrice < *old {
		return f64ptr(newPrice)
	}
	return old
}

// mostConservative picks the tie-break price across every triggered
// risk kind this bar: the minimum for a long position (the worst —
// lowest — of the triggered exits), the maximum for a short position.
// This is a pure fold over whatever triggered, not a hand-coded
// SL-before-TP priority (see DESIGN.md Open Question 2).
func mostConservative(dir Direction, triggered []float64) (float64, bool) {
	if len(triggered) == 0 {
		return 0, false
	}
	best := triggered[0]
	for _, p := range triggered[1:] {
		if dir == Long {
			best = math.Min(best, p)
		} else {
			best = math.Max(best, p)
		}
	}
	return best, true
}

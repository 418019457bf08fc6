package backtest

// Probe-price selection: which bar field to compare a risk threshold
// against, for each of the evaluation modes described in spec.md §4.3.

// switchPricesInBar always uses the bar's extrema: SL probes the
// adverse extreme, TP probes the favorable one.
func switchPricesInBar(low, high float64, dir Direction) (slProbe, tpProbe float64) {
	if dir == Long {
		return low, high
	}
	return high, low
}

// switchPricesNextBar probes extrema when useExtrema is set, else
// uses close for both SL and TP.
func switchPricesNextBar(low, high, close float64, useExtrema bool, dir Direction) (slProbe, tpProbe float64) {
	if !useExtrema {
		return close, close
	}
	return switchPricesInBar(low, high, dir)
}

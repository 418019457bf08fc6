// Package indicator wraps a subset of go-talib: ATR for building a
// Bar.ATR column (used by the feed loader), an auto-reversing PSAR,
// and moving averages and oscillators for deriving signal precursor
// columns.
package indicator

import "github.com/markcheno/go-talib"

// MaType selects which moving-average formula an indicator uses internally.
type MaType = talib.MaType

const (
	TypeSMA  = talib.SMA
	TypeEMA  = talib.EMA
	TypeWMA  = talib.WMA
	TypeDEMA = talib.DEMA
	TypeTEMA = talib.TEMA
)

// ATR computes the Average True Range over period bars, used to build
// a Bar.ATR column for the ATR-based risk-exit kinds.
func ATR(high, low, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}

// PSAR computes Parabolic SAR with auto-reversal. The engine never
// calls this during a run; its trailing stop uses its own
// forced-direction PSAR recurrence.
func PSAR(high, low []float64, accel, max float64) []float64 {
	return talib.Sar(high, low, accel, max)
}

// SMA computes the Simple Moving Average over period bars.
func SMA(input []float64, period int) []float64 {
	return talib.Sma(input, period)
}

// EMA computes the Exponential Moving Average over period bars.
func EMA(input []float64, period int) []float64 {
	return talib.Ema(input, period)
}

// RSI computes the Relative Strength Index over period bars.
func RSI(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// MACD computes Moving Average Convergence/Divergence, returning the
// MACD line, the signal line, and the histogram.
func MACD(input []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	return talib.Macd(input, fastPeriod, slowPeriod, signalPeriod)
}

// BBands computes Bollinger Bands, returning the upper, middle, and lower bands.
func BBands(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	return talib.BBands(input, period, deviation, deviation, maType)
}

// ADX computes the Average Directional Movement Index over period bars.
func ADX(high, low, close []float64, period int) []float64 {
	return talib.Adx(high, low, close, period)
}

// CCI computes the Commodity Channel Index over period bars.
func CCI(high, low, close []float64, period int) []float64 {
	return talib.Cci(high, low, close, period)
}

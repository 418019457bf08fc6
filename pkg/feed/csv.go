// Package feed loads OHLCV bars (plus optional pre-computed entry/exit
// signal columns) from CSV into a backtest.PreparedData, the one input
// format the engine itself never parses.
package feed

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/raykavin/backengine/pkg/backtest"
	"github.com/raykavin/backengine/pkg/indicator"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

// defaultHeaderMap is used for headerless CSVs: time,open,close,low,high,volume.
var defaultHeaderMap = map[string]int{
	"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
}

// requiredColumns must be present (by name or by the positional
// fallback) for a row to parse into a Bar.
var requiredColumns = []string{"time", "open", "high", "low", "close"}

// CSVSource loads a single instrument's bars from one CSV file.
type CSVSource struct {
	// ATRPeriod computes a Bar.ATR column when the CSV has no "atr"
	// column of its own. Zero disables the fallback (Bar.ATR stays NaN).
	ATRPeriod int
}

// Load parses path into a backtest.PreparedData. timeframe is a
// duration string ("1h", "15m", ...) used only to validate that
// consecutive rows are evenly spaced; it does not resample the data.
func (s CSVSource) Load(path, timeframe string) (*backtest.PreparedData, error) {
	step, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return nil, fmt.Errorf("parse timeframe %q: %w", timeframe, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, backtest.ErrEmptyData
	}

	headerMap, hasHeader := parseHeader(rows[0])
	if hasHeader {
		rows = rows[1:]
	}

	bars := make([]backtest.Bar, 0, len(rows))
	var prevTime int64
	for lineNo, row := range rows {
		bar, err := parseBar(row, headerMap)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		if lineNo > 0 {
			gap := bar.Time - prevTime
			if gap <= 0 {
				return nil, fmt.Errorf("line %d: timestamps not strictly increasing", lineNo+1)
			}
			if gap != int64(step.Seconds()) {
				return nil, fmt.Errorf("line %d: gap of %ds does not match timeframe %s", lineNo+1, gap, timeframe)
			}
		}
		prevTime = bar.Time
		bars = append(bars, bar)
	}

	data := &backtest.PreparedData{Bars: bars}
	if s.ATRPeriod > 0 {
		fillMissingATR(data, s.ATRPeriod)
	}
	return data, nil
}

// parseHeader reports whether rows[0] is a header line (its first
// field fails to parse as a number) and, if so, builds a name->column
// index map; otherwise the caller falls back to defaultHeaderMap.
func parseHeader(row []string) (map[string]int, bool) {
	if _, err := strconv.ParseInt(row[0], 10, 64); err == nil {
		return defaultHeaderMap, false
	}
	m := make(map[string]int, len(row))
	for i, name := range row {
		m[name] = i
	}
	return m, true
}

func parseBar(row []string, headerMap map[string]int) (backtest.Bar, error) {
	var bar backtest.Bar
	bar.ATR = math.NaN()

	t, err := strconv.ParseInt(field(row, headerMap, "time"), 10, 64)
	if err != nil {
		return bar, fmt.Errorf("time: %w", err)
	}
	bar.Time = t

	for _, kv := range []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low}, {"close", &bar.Close},
	} {
		v, err := strconv.ParseFloat(field(row, headerMap, kv.name), 64)
		if err != nil {
			return bar, fmt.Errorf("%s: %w", kv.name, err)
		}
		*kv.dst = v
	}

	if idx, ok := headerMap["atr"]; ok && idx < len(row) {
		if v, err := strconv.ParseFloat(row[idx], 64); err == nil {
			bar.ATR = v
		}
	}

	bar.EnterLong = flagField(row, headerMap, "enter_long")
	bar.ExitLong = flagField(row, headerMap, "exit_long")
	bar.EnterShort = flagField(row, headerMap, "enter_short")
	bar.ExitShort = flagField(row, headerMap, "exit_short")

	return bar, nil
}

func field(row []string, headerMap map[string]int, name string) string {
	idx, ok := headerMap[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func flagField(row []string, headerMap map[string]int, name string) bool {
	v := field(row, headerMap, name)
	return v == "1" || v == "true" || v == "TRUE"
}

// fillMissingATR computes ATR over the full series and writes it into
// every bar whose ATR column was absent from the source CSV.
func fillMissingATR(data *backtest.PreparedData, period int) {
	n := data.Len()
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i, b := range data.Bars {
		high[i], low[i], close[i] = b.High, b.Low, b.Close
	}
	atr := indicator.ATR(high, low, close, period)
	for i := range data.Bars {
		if math.IsNaN(data.Bars[i].ATR) {
			data.Bars[i].ATR = atr[i]
		}
	}
}

// MissingColumns reports which of requiredColumns are absent from a
// header row, for a caller that wants to validate a file before Load.
func MissingColumns(header []string) []string {
	return lo.Filter(requiredColumns, func(name string, _ int) bool {
		return !lo.Contains(header, name)
	})
}

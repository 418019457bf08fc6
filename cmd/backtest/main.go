// Command backtest wires a CSV bar feed through the engine, prints a
// trade summary and equity-curve histogram, then sweeps entry/exit
// thresholds with a random search and reports the best parameter set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/raykavin/backengine/pkg/backtest"
	"github.com/raykavin/backengine/pkg/feed"
	"github.com/raykavin/backengine/pkg/logger/zerolog"
	"github.com/raykavin/backengine/pkg/metric"
	"github.com/raykavin/backengine/pkg/notify"
	"github.com/raykavin/backengine/pkg/optimizer"
	"github.com/raykavin/backengine/pkg/report"
	"github.com/raykavin/backengine/pkg/storage"
)

var (
	dataFile  = flag.String("data", "./data/BTCUSDT-1h.csv", "CSV bars file")
	timeframe = flag.String("timeframe", "1h", "bar timeframe, for gap validation")
	resultsDB = flag.String("results", "./results.db", "BuntDB file for optimizer results")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	zl := must(zerolog.NewZerolog("info", "2006-01-02 15:04:05", true, false))
	log := zerolog.NewAdapter(zl.Logger)

	data := must(feed.CSVSource{ATRPeriod: 14}.Load(*dataFile, *timeframe))
	log.Infof("loaded %d bars from %s", data.Len(), *dataFile)

	baseline := must(backtest.Run(data, defaultParams()))
	printReport(data.Len(), baseline)

	notifier := notify.NewLogNotifier(log)
	runOptimizer(ctx, data, notifier, *resultsDB)
}

func defaultParams() *backtest.ParamBundle {
	return &backtest.ParamBundle{
		InitialCapital: 10000,
		FeePct:         0.001,
		SLPct:          &backtest.RiskParam{Value: 0.05},
		TPPct:          &backtest.RiskParam{Value: 0.10},
		SLExitInBar:    true,
		TPExitInBar:    true,
	}
}

func printReport(instrumentBars int, buf *backtest.OutputBuffers) {
	summary := report.NewTradeSummary(fmt.Sprintf("%d bars", instrumentBars), buf)
	fmt.Println(summary.String())

	m := metric.Evaluate(buf, 24*365)
	fmt.Printf("Sharpe: %.2f  Sortino: %.2f  Calmar: %.2f  MaxDD: %.2f%%\n",
		m.SharpeRatio, m.SortinoRatio, m.CalmarRatio, m.MaxDrawdown*100)
	fmt.Printf("RETURN: %.2f%% (%.2f%% ~ %.2f%%, 95%% CI)\n",
		m.ReturnCI.Mean*100, m.ReturnCI.Lower*100, m.ReturnCI.Upper*100)

	fmt.Println(report.EquityCurveASCII(buf, 15))
}

func runOptimizer(ctx context.Context, data *backtest.PreparedData, notifier notify.Notifier, resultsPath string) {
	params := []optimizer.Parameter{
		{Name: "sl_pct", Type: optimizer.TypeFloat, Default: 0.05, Min: 0.01, Max: 0.10, LogScale: true},
		{Name: "tp_pct", Type: optimizer.TypeFloat, Default: 0.10, Min: 0.02, Max: 0.30, LogScale: true},
	}

	evaluator := optimizer.NewBacktestEvaluator(data, buildParamBundle, 24*365)

	config := optimizer.NewConfig().
		WithParameters(params...).
		WithMaxIterations(50).
		WithParallelism(4).
		WithTargetMetric(optimizer.MetricSharpeRatio, true)

	search := must(optimizer.NewRandomSearch(config))

	results := must(search.Optimize(ctx, evaluator, config.TargetMetric, config.Maximize))
	if len(results) == 0 {
		log.Println("optimizer returned no results")
		return
	}

	best := results[0]
	notifier.Notify(fmt.Sprintf("best sharpe %.3f at %s", best.Metrics[string(optimizer.MetricSharpeRatio)],
		optimizer.FormatParameterSet(best.Parameters)))

	store := must(storage.NewBuntStore(resultsPath))
	defer store.Close()
	for _, r := range results {
		must(store.Save(string(optimizer.MetricSharpeRatio), r))
	}
}

func buildParamBundle(params optimizer.ParameterSet) (*backtest.ParamBundle, error) {
	slPct, ok := params["sl_pct"].(float64)
	if !ok {
		return nil, fmt.Errorf("sl_pct must be a float")
	}
	tpPct, ok := params["tp_pct"].(float64)
	if !ok {
		return nil, fmt.Errorf("tp_pct must be a float")
	}

	bundle := defaultParams()
	bundle.SLPct = &backtest.RiskParam{Value: slPct}
	bundle.TPPct = &backtest.RiskParam{Value: tpPct}
	return bundle, nil
}

func must[T any](val T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return val
}
